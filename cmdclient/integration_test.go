package cmdclient_test

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/cmdclient"
	"github.com/lud4ik/cmdnet/cmdserver"
	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/metrics"
)

var _ = Describe("Client against a live Service", func() {
	var (
		svc    *cmdserver.Service
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		var err error
		m := metrics.New(prometheus.NewRegistry())
		svc, err = cmdserver.NewService("127.0.0.1:0", logger.New(), m, nil)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()
		time.Sleep(20 * time.Millisecond)
	})

	AfterEach(func() {
		cancel()
		Eventually(done, time.Second).Should(Receive())
	})

	It("sends PING and receives PONG end to end", func() {
		c, err := cmdclient.Dial(svc.Addr().String(), logger.New())
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		pkt, err := cmdclient.BuildCommand("ping", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Send(pkt)).To(Succeed())

		reply, err := c.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(cmdclient.Describe(reply)).To(Equal(">>> pong"))
	})

	It("sends FINISH and recognizes the shutdown reply", func() {
		c, err := cmdclient.Dial(svc.Addr().String(), logger.New())
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		pkt, err := cmdclient.BuildCommand("finish", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Send(pkt)).To(Succeed())

		reply, err := c.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(cmdclient.IsShutdownReply(reply)).To(BeTrue())
	})
})
