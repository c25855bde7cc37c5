package reactor_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/reactor"
)

var _ = Describe("Loop", func() {
	var (
		loop   *reactor.Loop
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		loop = reactor.New(logger.New())
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()
	})

	AfterEach(func() {
		loop.Stop()
		cancel()
		Eventually(done, time.Second).Should(Receive())
	})

	It("runs CallSoonThreadsafe callbacks in submission order", func() {
		var mu sync.Mutex
		var order []int

		for i := 0; i < 5; i++ {
			i := i
			loop.CallSoonThreadsafe(func(*reactor.Loop) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}

		Eventually(func() []int {
			mu.Lock()
			defer mu.Unlock()
			return append([]int(nil), order...)
		}, time.Second).Should(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("fires CallLater entries in non-decreasing deadline order", func() {
		var mu sync.Mutex
		var order []string

		loop.CallSoonThreadsafe(func(l *reactor.Loop) {
			l.CallLater(30*time.Millisecond, func(*reactor.Loop) {
				mu.Lock()
				order = append(order, "late")
				mu.Unlock()
			})
			l.CallLater(5*time.Millisecond, func(*reactor.Loop) {
				mu.Lock()
				order = append(order, "early")
				mu.Unlock()
			})
		})

		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), order...)
		}, time.Second).Should(Equal([]string{"early", "late"}))
	})

	It("never fires a cancelled call", func() {
		fired := make(chan struct{}, 1)
		var call *reactor.Call

		loop.CallSoonThreadsafe(func(l *reactor.Loop) {
			call = l.CallLater(10*time.Millisecond, func(*reactor.Loop) {
				fired <- struct{}{}
			})
			call.Cancel()
		})

		Consistently(fired, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("runs RunInExecutor's job off the loop goroutine and its callback on the loop", func() {
		result := make(chan interface{}, 1)

		loop.CallSoonThreadsafe(func(l *reactor.Loop) {
			l.RunInExecutor(
				func() (interface{}, error) {
					return 42, nil
				},
				func(lp *reactor.Loop, v interface{}, err error) {
					Expect(err).NotTo(HaveOccurred())
					result <- v
				},
			)
		})

		Eventually(result, time.Second).Should(Receive(Equal(42)))
	})
})
