package transport_test

import (
	"context"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/reactor"
	"github.com/lud4ik/cmdnet/transport"
)

// echoProtocol writes back whatever it receives and records lifecycle
// calls, used to drive the Factory/Transport wiring end to end.
type echoProtocol struct {
	mu   sync.Mutex
	made bool
	t    *transport.Transport
	lost chan error
	msgs chan []byte
}

func newEchoProtocol() *echoProtocol {
	return &echoProtocol{lost: make(chan error, 1), msgs: make(chan []byte, 8)}
}

func (p *echoProtocol) ConnectionMade(t *transport.Transport) {
	p.mu.Lock()
	p.made = true
	p.t = t
	p.mu.Unlock()
}

func (p *echoProtocol) DataReceived(data []byte) {
	cp := append([]byte(nil), data...)
	p.msgs <- cp
	_, _ = p.t.Write(cp)
}

func (p *echoProtocol) ConnectionLost(reason error) {
	p.lost <- reason
}

var _ = Describe("Factory and Transport", func() {
	var (
		loop     *reactor.Loop
		ctx      context.Context
		cancel   context.CancelFunc
		loopDone chan error
		factory  *transport.Factory
		proto    *echoProtocol
	)

	BeforeEach(func() {
		loop = reactor.New(logger.New())
		ctx, cancel = context.WithCancel(context.Background())
		loopDone = make(chan error, 1)
		go func() { loopDone <- loop.Run(ctx) }()

		proto = newEchoProtocol()
		factory = transport.NewFactory(loop, logger.New(), func() transport.Protocol { return proto })

		Expect(factory.RegisterServer("127.0.0.1:0")).To(Succeed())
		go func() { _ = factory.Listen(ctx) }()
	})

	AfterEach(func() {
		_ = factory.Shutdown(ctx)
		loop.Stop()
		cancel()
		Eventually(loopDone, time.Second).Should(Receive())
	})

	It("accepts a connection, delivers data in order, and echoes it back", func() {
		conn, err := net.Dial("tcp", factory.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("hello"))
		Expect(err).NotTo(HaveOccurred())

		Eventually(proto.msgs, time.Second).Should(Receive(Equal([]byte("hello"))))

		buf := make([]byte, 5)
		Expect(conn.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		_, err = conn.Read(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal([]byte("hello")))

		Eventually(func() int { return factory.OpenConnections() }, time.Second).Should(Equal(1))
	})

	It("notifies ConnectionLost when the client disconnects", func() {
		conn, err := net.Dial("tcp", factory.Addr().String())
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int { return factory.OpenConnections() }, time.Second).Should(Equal(1))
		Expect(conn.Close()).To(Succeed())

		Eventually(proto.lost, time.Second).Should(Receive())
		Eventually(func() int { return factory.OpenConnections() }, time.Second).Should(Equal(0))
	})
})
