package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatrix/internal/adapters/mq/queue"
	"github.com/okian/skillmatrix/internal/adapters/mq/worker"
	"github.com/okian/skillmatrix/internal/domain/dedupe"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{}
}

func (r *recordingRefresher) Refresh(_ context.Context, canvas string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, canvas)
	return r.err
}

func (r *recordingRefresher) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a refresh queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		ref := &recordingRefresher{}
		pool := worker.NewPool(2, q, ref)
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 2)

		convey.Convey("Queued jobs are refreshed", func() {
			convey.So(q.Enqueue(ctx, queue.Job{Canvas: "skillsChart"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, queue.Job{Canvas: "comparisonChart"}), convey.ShouldBeNil)

			convey.So(eventually(func() bool { return len(ref.Calls()) == 2 }), convey.ShouldBeTrue)
			convey.So(ref.Calls(), convey.ShouldContain, "skillsChart")
			convey.So(ref.Calls(), convey.ShouldContain, "comparisonChart")
		})

		convey.Convey("Shutdown closes the queue and stops the workers", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a failing refresher", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue()
		ref := &recordingRefresher{err: errors.New("canvas gone")}
		w := worker.NewInMemoryWorker(q, ref)
		go w.Run(ctx)

		convey.So(q.Enqueue(ctx, queue.Job{Canvas: "a"}), convey.ShouldBeNil)
		convey.So(q.Enqueue(ctx, queue.Job{Canvas: "b"}), convey.ShouldBeNil)

		convey.Convey("The worker keeps going after an error", func() {
			convey.So(eventually(func() bool { return len(ref.Calls()) == 2 }), convey.ShouldBeTrue)
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestScheduler(t *testing.T) {
	convey.Convey("Given a scheduler with a fake clock", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		clock := clockwork.NewFakeClock()
		pending := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		q := queue.NewInMemoryQueue()
		ref := &recordingRefresher{}
		pool := worker.NewPool(1, q, ref, worker.WithPending(pending))
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()

		s := worker.NewScheduler(q, pending, worker.WithDelay(300*time.Millisecond), worker.WithClock(clock))

		convey.Convey("Nothing runs before the delay", func() {
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeTrue)
			convey.So(s.Pending("skillsChart"), convey.ShouldBeTrue)
			clock.Advance(299 * time.Millisecond)
			time.Sleep(20 * time.Millisecond)
			convey.So(ref.Calls(), convey.ShouldBeEmpty)
		})

		convey.Convey("Requests within the delay are coalesced into one refresh", func() {
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeTrue)
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeFalse)
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeFalse)

			clock.Advance(300 * time.Millisecond)

			convey.So(eventually(func() bool { return len(ref.Calls()) == 1 }), convey.ShouldBeTrue)
			time.Sleep(20 * time.Millisecond)
			convey.So(ref.Calls(), convey.ShouldResemble, []string{"skillsChart"})

			convey.Convey("A request after the refresh started schedules a new one", func() {
				convey.So(eventually(func() bool { return !s.Pending("skillsChart") }), convey.ShouldBeTrue)
				convey.So(eventually(func() bool { return s.Schedule(ctx, "skillsChart") }), convey.ShouldBeTrue)
				clock.Advance(300 * time.Millisecond)
				convey.So(eventually(func() bool { return len(ref.Calls()) == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("Different canvases are refreshed independently", func() {
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeTrue)
			convey.So(s.Schedule(ctx, "comparisonChart"), convey.ShouldBeTrue)
			clock.Advance(time.Second)
			convey.So(eventually(func() bool { return len(ref.Calls()) == 2 }), convey.ShouldBeTrue)
		})

		convey.Convey("Close cancels waiting refreshes", func() {
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeTrue)
			s.Close()
			clock.Advance(time.Second)
			time.Sleep(20 * time.Millisecond)
			convey.So(ref.Calls(), convey.ShouldBeEmpty)
			convey.So(s.Schedule(ctx, "skillsChart"), convey.ShouldBeFalse)
		})
	})
}
