package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	dedupe "github.com/okian/skillmatrix/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "error|network error, try again")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "canvas:skillsRadar")
				seen := d.SeenAndRecord(ctx, "canvas:skillsRadar")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is unrecorded", func() {
				d.SeenAndRecord(ctx, "a")
				d.SeenAndRecord(ctx, "b")
				d.Unrecord(ctx, "a")
				d.Unrecord(ctx, "missing")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 1)
					So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
					So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				})
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "first")
			d.SeenAndRecord(ctx, "second")
			d.SeenAndRecord(ctx, "third")

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "third"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "second"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "first"), ShouldBeFalse)
			})
		})

		Convey("When a window is configured", func() {
			clock := clockwork.NewFakeClock()
			d := dedupe.NewInMemoryDeduper(
				dedupe.WithWindow(3*time.Second),
				dedupe.WithClock(clock),
			)
			So(d.SeenAndRecord(ctx, "X"), ShouldBeFalse)

			Convey("Then a repeat inside the window is seen", func() {
				clock.Advance(2 * time.Second)
				So(d.SeenAndRecord(ctx, "X"), ShouldBeTrue)
			})

			Convey("Then a repeat after the window is new again", func() {
				clock.Advance(3 * time.Second)
				So(d.SeenAndRecord(ctx, "X"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestInMemoryDeduperConcurrent(t *testing.T) {
	Convey("Given concurrent writers on the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		ctx := context.Background()

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every key is recorded exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
