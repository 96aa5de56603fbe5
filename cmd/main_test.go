package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/config"
	"github.com/okian/fulfillment/pkg/logger"
	"github.com/okian/fulfillment/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FULFILLMENT_ADDR", ":8080")
			_ = os.Setenv("FULFILLMENT_LOOKUP_MODE", "indexed")
			_ = os.Setenv("FULFILLMENT_CONTEXT_LIFESPAN", "3")
			defer func() {
				_ = os.Unsetenv("FULFILLMENT_ADDR")
				_ = os.Unsetenv("FULFILLMENT_LOOKUP_MODE")
				_ = os.Unsetenv("FULFILLMENT_CONTEXT_LIFESPAN")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LookupMode, convey.ShouldEqual, config.LookupIndexed)
				convey.So(cfg.ContextLifespan, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When testing logger configuration", func() {
			cfg := config.New()
			cfg.LogFormat = "json"
			cfg.LogLevel = "verbose"

			convey.Convey("Then an unknown level should fall back without failing", func() {
				convey.So(configureLogger(cfg), convey.ShouldBeNil)
				_ = logger.SetFormat("text")
			})

			convey.Convey("Then an unknown format should fail", func() {
				cfg.LogFormat = "xml"
				convey.So(configureLogger(cfg), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})

			convey.Convey("Then the global manager should follow the config", func() {
				cfg := config.New()
				cfg.MetricsRefreshInterval = 2 * time.Second
				cfg.MetricsLabels = map[string]string{"env": "test"}
				defer configureMetrics(config.New())

				m := configureMetrics(cfg)
				convey.So(m, convey.ShouldEqual, metrics.Global())
				convey.So(m.Enabled(), convey.ShouldBeTrue)
				convey.So(m.RefreshInterval(), convey.ShouldEqual, 2*time.Second)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired application", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.SeedFile = "../internal/seed/testdata/fixture.yaml"
		cfg.WebhookSecret = "s3cret"

		store, err := app.OpenStore(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		svc, err := app.FromConfig(cfg, store, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc)

		convey.Convey("Then docs, stats and webhook should be served", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/stats", "/healthz"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}

			body := `{"responseId":"r-1","session":"s","queryResult":{"intent":{"displayName":"PlayerElo"},"parameters":{"player_name":"Alice"}}}`
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
			req.Header.Set("X-Webhook-Secret", "s3cret")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "Alice has an Elo rating of 2,850.")
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx, 10*time.Millisecond)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, app.New(), 10*time.Millisecond)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("FULFILLMENT_STORE_DRIVER", "postgres")
			defer func() { _ = os.Unsetenv("FULFILLMENT_STORE_DRIVER") }()

			convey.Convey("Then run should fail before serving", func() {
				convey.So(run(context.Background()), convey.ShouldNotBeNil)
			})
		})
	})
}
