package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/skillmatrix/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BaseURL, convey.ShouldEqual, "http://localhost:5000")
			convey.So(cfg.NotifyDuration(), convey.ShouldEqual, 3*time.Second)
			convey.So(cfg.ChartRefreshDelay(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.SearchDebounce(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.ChartLabelMax, convey.ShouldEqual, 20)
			convey.So(cfg.CompareMinSkills, convey.ShouldEqual, 3)
			convey.So(cfg.SearchMinChars, convey.ShouldEqual, 2)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When base_url is relative", func() {
			cfg.BaseURL = "/api"

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When compare_min_skills is zero", func() {
			cfg.CompareMinSkills = 0

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When log_format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
