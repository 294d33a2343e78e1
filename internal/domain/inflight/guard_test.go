package inflight_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/skillmatrix/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a guard", t, func() {
		g := inflight.New()
		ctx := context.Background()

		Convey("When a free key is acquired", func() {
			release, waited, err := g.Acquire(ctx, "7:self")

			Convey("Then it is held without waiting", func() {
				So(err, ShouldBeNil)
				So(waited, ShouldBeFalse)
				So(g.Busy("7:self"), ShouldBeTrue)
				release()
				release()
				So(g.Busy("7:self"), ShouldBeFalse)
				So(g.Len(), ShouldEqual, 0)
			})
		})

		Convey("When different keys are acquired", func() {
			r1, _, err1 := g.Acquire(ctx, "7:self")
			r2, waited, err2 := g.Acquire(ctx, "7:manager")

			Convey("Then they are independent", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(waited, ShouldBeFalse)
				So(g.Len(), ShouldEqual, 2)
				r1()
				r2()
			})
		})

		Convey("When a second caller queues behind the holder", func() {
			release, _, _ := g.Acquire(ctx, "k")
			got := make(chan error, 1)
			go func() {
				r, waited, err := g.Acquire(ctx, "k")
				if err == nil && waited {
					r()
				}
				got <- err
			}()

			Convey("Then it runs once the holder releases", func() {
				waitForWaiter(g, "k")
				release()
				So(<-got, ShouldBeNil)
				So(g.Busy("k"), ShouldBeFalse)
			})
		})

		Convey("When a third caller queues behind a waiting one", func() {
			release, _, _ := g.Acquire(ctx, "k")
			second := make(chan error, 1)
			go func() {
				_, _, err := g.Acquire(ctx, "k")
				second <- err
			}()
			waitForWaiter(g, "k")

			third := make(chan error, 1)
			go func() {
				r, _, err := g.Acquire(ctx, "k")
				if err == nil {
					r()
				}
				third <- err
			}()

			Convey("Then the waiting caller is superseded and the newest runs", func() {
				So(errors.Is(<-second, inflight.ErrSuperseded), ShouldBeTrue)
				release()
				So(<-third, ShouldBeNil)
			})
		})

		Convey("When a waiter's context is cancelled", func() {
			release, _, _ := g.Acquire(ctx, "k")
			cctx, cancel := context.WithCancel(ctx)
			got := make(chan error, 1)
			go func() {
				_, _, err := g.Acquire(cctx, "k")
				got <- err
			}()
			waitForWaiter(g, "k")
			cancel()

			Convey("Then it returns the context error and the key frees on release", func() {
				So(errors.Is(<-got, context.Canceled), ShouldBeTrue)
				release()
				So(g.Busy("k"), ShouldBeFalse)
			})
		})
	})
}

func waitForWaiter(g *inflight.Guard, key string) {
	deadline := time.Now().Add(time.Second)
	for !g.Waiting(key) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}
