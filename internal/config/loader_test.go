package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/skillmatrix/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.NotifyDurationMS, convey.ShouldEqual, 3000)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKILLMATRIX_BASE_URL", "https://hr.example.com")
			_ = os.Setenv("SKILLMATRIX_NOTIFY_DURATION_MS", "5000")
			_ = os.Setenv("SKILLMATRIX_COMPARE_MIN_SKILLS", "4")
			_ = os.Setenv("SKILLMATRIX_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://hr.example.com")
				convey.So(cfg.NotifyDurationMS, convey.ShouldEqual, 5000)
				convey.So(cfg.CompareMinSkills, convey.ShouldEqual, 4)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
base_url: "http://backend:8000"
addr: ":9090"
search_debounce_ms: 150
chart_label_max: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SKILLMATRIX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://backend:8000")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SearchDebounceMS, convey.ShouldEqual, 150)
				convey.So(cfg.ChartLabelMax, convey.ShouldEqual, 12)
				convey.So(cfg.SearchMinChars, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When env overrides the file", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SKILLMATRIX_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()

			_, err := config.Load(ctx, config.WithFile("/nonexistent/skillmatrix.yaml"))

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML is malformed", func() {
			tmpFile := createTempConfigFile("base_url: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()
			clearConfigEnvVars()

			_, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When base_url from env is relative", func() {
			_ = os.Setenv("SKILLMATRIX_BASE_URL", "/relative")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"SKILLMATRIX_CONFIG",
		"SKILLMATRIX_BASE_URL",
		"SKILLMATRIX_ADDR",
		"SKILLMATRIX_LOG_LEVEL",
		"SKILLMATRIX_NOTIFY_DURATION_MS",
		"SKILLMATRIX_COMPARE_MIN_SKILLS",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "skillmatrix-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
