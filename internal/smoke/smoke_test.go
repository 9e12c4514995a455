package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/winrate/internal/adapters/http/api"
	"github.com/okian/winrate/internal/adapters/repository"
	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/domain/forest"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/smoke"
	"github.com/okian/winrate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type staticSource struct{ ds *match.Dataset }

func (s staticSource) Load(context.Context) (*match.Dataset, error) { return s.ds, nil }

func history(n int) *match.Dataset {
	records := make([]match.Record, 0, n)
	for i := 0; i < n; i++ {
		r := match.Record{
			Champion: "Jinx", Role: match.RoleADC, RunePrimary: 8000, RuneSub: 8300, QueueID: 420, Patch: "14.20",
			Stats: match.Stats{match.Kills: 2, match.Deaths: 8},
		}
		if i%2 == 0 {
			r.Win = true
			r.Stats = match.Stats{match.Kills: 10, match.Deaths: 2}
		}
		records = append(records, r)
	}
	return match.NewDataset(records, []string{
		"champion", "role", "runePrimary", "runeSub", "win", "gameVersion", "queueId",
		"kills", "deaths", "assists", "goldPerMin", "csPerMin", "dmgPerMin", "visionScore", "xpPerMin",
	})
}

func newServer() *httptest.Server {
	svc := service.New(
		service.WithDatasetSource(staticSource{ds: history(20)}),
		service.WithStore(repository.NewMemoryStore()),
		service.WithForestOptions(forest.WithTrees(10), forest.WithMaxDepth(4)),
		service.WithLogger(logger.NewNop()),
	)
	return httptest.NewServer(api.NewServer(svc, api.WithLogger(logger.NewNop())).Handler(context.Background()))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running API", t, func() {
		srv := newServer()
		defer srv.Close()

		cfg := &smoke.Config{BaseURL: srv.URL, Requests: 40, Workers: 4, Timeout: 5 * time.Second, Seed: 1}

		Convey("When training first", func() {
			cfg.Train = true
			stats, err := smoke.Run(ctx, cfg)

			Convey("Then every prediction verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Trained, ShouldBeTrue)
				So(stats.Generated, ShouldEqual, 40)
				So(stats.Submitted, ShouldEqual, 40)
				So(stats.Successful, ShouldEqual, 40)
				So(stats.Inconsistent, ShouldEqual, 0)
			})
		})

		Convey("When no model has been trained", func() {
			stats, err := smoke.Run(ctx, cfg)

			Convey("Then the run reports failures", func() {
				So(errors.Is(err, smoke.ErrFailures), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 40)
			})
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := smoke.Run(ctx, &smoke.Config{BaseURL: srv.URL, Requests: 1, Workers: 1, Timeout: time.Second})
		So(errors.Is(err, smoke.ErrUnhealthy), ShouldBeTrue)
	})

	Convey("Given an invalid config", t, func() {
		_, err := smoke.Run(ctx, &smoke.Config{BaseURL: "http://localhost", Workers: 0})
		So(errors.Is(err, smoke.ErrInvalidConfig), ShouldBeTrue)

		_, err = smoke.Run(ctx, nil)
		So(errors.Is(err, smoke.ErrInvalidConfig), ShouldBeTrue)
	})
}
