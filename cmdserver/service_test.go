package cmdserver_test

import (
	"context"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/cmdserver"
	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/metrics"
	"github.com/lud4ik/cmdnet/protocol"
	"github.com/lud4ik/cmdnet/wire"
)

// readFrame blocks until one full frame arrives on conn and returns its
// decoded Packet.
func readFrame(conn net.Conn, reg *wire.Registry) *wire.Packet {
	feeder := wire.NewFeeder(reg)
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		Expect(err).NotTo(HaveOccurred())
		pkt, ferr := feeder.Feed(buf[:n])
		Expect(ferr).NotTo(HaveOccurred())
		if pkt != nil {
			return pkt
		}
	}
}

func sendFrame(conn net.Conn, spec *wire.Spec, values map[string]interface{}) {
	p, err := wire.New(spec, values)
	Expect(err).NotTo(HaveOccurred())
	b, err := p.Pack()
	Expect(err).NotTo(HaveOccurred())
	_, err = conn.Write(b)
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("Service", func() {
	var (
		svc    *cmdserver.Service
		reg    *wire.Registry
		ctx    context.Context
		cancel context.CancelFunc
		runDone chan error
	)

	BeforeEach(func() {
		var err error
		reg, err = protocol.NewRegistry()
		Expect(err).NotTo(HaveOccurred())

		m := metrics.New(prometheus.NewRegistry())
		svc, err = cmdserver.NewService("127.0.0.1:0", logger.New(), m, nil)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel = context.WithCancel(context.Background())
		runDone = make(chan error, 1)
		go func() { runDone <- svc.Run(ctx) }()
		time.Sleep(20 * time.Millisecond) // let Listen start accepting
	})

	AfterEach(func() {
		cancel()
		Eventually(runDone, time.Second).Should(Receive())
	})

	dial := func() net.Conn {
		conn, err := net.Dial("tcp", svc.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		return conn
	}

	It("replies to PING with PONG", func() {
		conn := dial()
		defer conn.Close()

		sendFrame(conn, &protocol.Ping, nil)
		reply := readFrame(conn, reg)
		Expect(reply.Spec.ID).To(Equal(byte(protocol.IDPong)))
	})

	It("echoes PINGD's data back in PONGD", func() {
		conn := dial()
		defer conn.Close()

		sendFrame(conn, &protocol.PingD, map[string]interface{}{"data": "hi"})
		reply := readFrame(conn, reg)
		Expect(reply.Spec.ID).To(Equal(byte(protocol.IDPongD)))
		Expect(reply.Str("data")).To(Equal("hi"))
	})

	It("broadcasts CONNECTED to every connected client when one sends CONNECT", func() {
		a := dial()
		defer a.Close()
		b := dial()
		defer b.Close()

		sendFrame(a, &protocol.Connect, nil)

		replyA := readFrame(a, reg)
		Expect(replyA.Spec.ID).To(Equal(byte(protocol.IDConnected)))
		replyB := readFrame(b, reg)
		Expect(replyB.Spec.ID).To(Equal(byte(protocol.IDConnected)))
	})

	It("does not send CONNECTED on a bare accept, only in reply to CONNECT", func() {
		conn := dial()
		defer conn.Close()

		Expect(conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))).To(Succeed())
		buf := make([]byte, 1)
		_, err := conn.Read(buf)
		nerr, ok := err.(net.Error)
		Expect(ok && nerr.Timeout()).To(BeTrue())
	})

	It("broadcasts ACKQUIT to all and closes only the originator", func() {
		a := dial()
		defer a.Close()

		b := dial()
		defer b.Close()

		sendFrame(a, &protocol.Quit, nil)

		ackA := readFrame(a, reg)
		Expect(ackA.Spec.ID).To(Equal(byte(protocol.IDAckQuit)))
		ackB := readFrame(b, reg)
		Expect(ackB.Spec.ID).To(Equal(byte(protocol.IDAckQuit)))

		Expect(a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))).To(Succeed())
		buf := make([]byte, 1)
		_, err := a.Read(buf)
		Expect(err).To(HaveOccurred()) // originator's socket is closed

		Expect(b.SetReadDeadline(time.Now().Add(50 * time.Millisecond))).To(Succeed())
		_, err = b.Read(buf)
		Expect(err).To(HaveOccurred()) // just a timeout, B stays connected
		nerr, ok := err.(net.Error)
		Expect(ok && nerr.Timeout()).To(BeTrue())
	})

	It("sends DELAYED to the originator only, after the configured delay", func() {
		old := cmdserver.DelayDuration
		cmdserver.DelayDuration = 30 * time.Millisecond
		defer func() { cmdserver.DelayDuration = old }()

		conn := dial()
		defer conn.Close()

		sendFrame(conn, &protocol.Delay, map[string]interface{}{"data": "x"})

		Expect(conn.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		reply := readFrame(conn, reg)
		Expect(reply.Spec.ID).To(Equal(byte(protocol.IDDelayed)))
		Expect(reply.Str("data")).To(Equal("x"))
	})

	It("broadcasts ACKFINISH and shuts the service down", func() {
		conn := dial()
		defer conn.Close()

		sendFrame(conn, &protocol.Finish, nil)
		reply := readFrame(conn, reg)
		Expect(reply.Spec.ID).To(Equal(byte(protocol.IDAckFinish)))
		// AfterEach asserts svc.Run returns promptly after this.
	})
})
