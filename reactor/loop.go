package reactor

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lud4ik/cmdnet/logger"
)

// DefaultTimeout bounds how long Run waits when no timer is pending.
const DefaultTimeout = time.Second

// Loop is a single-threaded cooperative dispatcher: one goroutine (the one
// that calls Run) owns soon/later/handler state and executes every
// callback in order, so callbacks never need to coordinate with each
// other. Other goroutines may only reach in through CallSoonThreadsafe.
type Loop struct {
	log logger.Logger

	// mu guards soon and seq, which CallSoonThreadsafe mutates from other
	// goroutines. later is never touched off the loop goroutine (CallLater,
	// tick and nextTimeout all run there), so CallLater's use of mu around
	// its heap.Push is only to serialize the seq increment it shares with
	// soon; tick and nextTimeout read later without holding mu on purpose.
	mu   sync.Mutex
	soon []*Call

	later callHeap
	seq   uint64

	running atomic.Bool
	wake    chan struct{}

	ctx    context.Context
	execWG sync.WaitGroup
}

// New returns a Loop that logs through log.
func New(log logger.Logger) *Loop {
	return &Loop{
		log:  log,
		wake: make(chan struct{}, 1),
	}
}

// CallSoon schedules fn to run on the next tick. Safe to call only from
// the loop goroutine (e.g. from inside another callback).
func (l *Loop) CallSoon(fn func(*Loop)) *Call {
	c := &Call{deadline: time.Now(), fn: fn}
	l.mu.Lock()
	l.seq++
	c.seq = l.seq
	l.soon = append(l.soon, c)
	l.mu.Unlock()
	return c
}

// CallLater schedules fn to run no earlier than delay from now. Safe to
// call only from the loop goroutine.
func (l *Loop) CallLater(delay time.Duration, fn func(*Loop)) *Call {
	l.mu.Lock()
	l.seq++
	c := &Call{deadline: time.Now().Add(delay), seq: l.seq, fn: fn}
	heap.Push(&l.later, c)
	l.mu.Unlock()
	l.poke()
	return c
}

// CallSoonThreadsafe schedules fn to run on the next tick. Unlike
// CallSoon, it is safe to call from any goroutine — this is the loop's
// only structure shared across threads.
func (l *Loop) CallSoonThreadsafe(fn func(*Loop)) *Call {
	c := &Call{deadline: time.Now(), fn: fn}
	l.mu.Lock()
	l.seq++
	c.seq = l.seq
	l.soon = append(l.soon, c)
	l.mu.Unlock()
	l.poke()
	return c
}

func (l *Loop) poke() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains soon/later until ctx is cancelled or Stop is called. It
// blocks the calling goroutine; callers typically run it in its own
// goroutine and coordinate shutdown through ctx or Stop.
func (l *Loop) Run(ctx context.Context) error {
	l.ctx = ctx
	l.running.Store(true)
	defer l.running.Store(false)

	timer := time.NewTimer(DefaultTimeout)
	defer timer.Stop()

	for l.running.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}

		grewSoon := l.tick()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.nextTimeout(grewSoon))
	}

	return nil
}

// Stop clears the running flag and wakes the loop so Run returns promptly
// even if it is blocked waiting for the next tick. It does not wait for
// in-flight executor jobs; call Wait for that.
func (l *Loop) Stop() {
	l.running.Store(false)
	l.poke()
}

// Wait blocks until every job submitted via RunInExecutor has completed.
func (l *Loop) Wait() {
	l.execWG.Wait()
}

// tick drains soon, folds due later-entries into it, and invokes every
// uncancelled entry in order. It reports whether new entries were
// appended to soon while callbacks ran, so Run can poll again immediately.
func (l *Loop) tick() bool {
	l.mu.Lock()
	soonLocal := l.soon
	l.soon = nil
	l.mu.Unlock()

	now := time.Now()
	for l.later.Len() > 0 && !l.later[0].deadline.After(now) {
		c := heap.Pop(&l.later).(*Call)
		if !c.Cancelled() {
			soonLocal = append(soonLocal, c)
		}
	}

	for _, c := range soonLocal {
		if c.Cancelled() {
			continue
		}
		c.fn(l)
	}

	l.mu.Lock()
	grew := len(l.soon) > 0
	l.mu.Unlock()
	return grew
}

func (l *Loop) nextTimeout(soonGrew bool) time.Duration {
	if soonGrew {
		return 0
	}
	if l.later.Len() == 0 {
		return DefaultTimeout
	}
	d := time.Until(l.later[0].deadline)
	if d < 0 {
		return 0
	}
	if d > DefaultTimeout {
		return DefaultTimeout
	}
	return d
}

// RunInExecutor offloads fn to its own goroutine so a slow, blocking
// operation never stalls the loop. onDone is invoked back on the loop
// goroutine (via CallSoonThreadsafe) once fn returns.
func (l *Loop) RunInExecutor(fn func() (interface{}, error), onDone func(loop *Loop, result interface{}, err error)) {
	l.execWG.Add(1)

	g, _ := errgroup.WithContext(l.contextOrBackground())
	g.Go(func() error {
		defer l.execWG.Done()

		v, err := fn()
		l.CallSoonThreadsafe(func(lp *Loop) {
			onDone(lp, v, err)
		})
		if err != nil {
			return newExecutorError("executor job failed: %v", err)
		}
		return nil
	})
}

func (l *Loop) contextOrBackground() context.Context {
	if l.ctx != nil {
		return l.ctx
	}
	return context.Background()
}
