package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		dir := t.TempDir()
		_ = os.Setenv("WINRATE_ADDR", ":0")
		_ = os.Setenv("WINRATE_DATASET_PATH", filepath.Join(dir, "missing.csv"))
		_ = os.Setenv("WINRATE_MODEL_PATH", filepath.Join(dir, "model.json"))
		defer func() {
			_ = os.Unsetenv("WINRATE_ADDR")
			_ = os.Unsetenv("WINRATE_DATASET_PATH")
			_ = os.Unsetenv("WINRATE_MODEL_PATH")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the server is wired", func() {
			srv, err := newServer(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(srv.Addr, convey.ShouldEqual, ":0")
			convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)

			serve := func(method, path string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
				return w
			}

			convey.Convey("Then API and docs routes share one router", func() {
				convey.So(serve(http.MethodGet, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then the configured dataset path is used", func() {
				w := serve(http.MethodPost, "/train")
				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "missing.csv")
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given a redis store with a malformed url", t, func() {
		cfg := config.New()
		cfg.ModelStore = config.StoreRedis
		cfg.RedisURL = "http://not-redis"

		convey.Convey("Then wiring the server fails", func() {
			_, err := newServer(context.Background(), cfg, logger.NewNop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
