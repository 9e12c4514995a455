package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/winrate/internal/adapters/repository"
	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/forest"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/domain/pipeline"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

// mockRedis keeps string values in a map and implements only Get and Set.
type mockRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
}

func newMockRedis() *mockRedis { return &mockRedis{data: map[string]string{}} }

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func fitted(runID string) *pipeline.Pipeline {
	p := pipeline.New(runID, []match.Metric{match.Kills}, forest.WithTrees(3), forest.WithSeed(1))
	xs := []features.Vector{
		{Champion: "Jinx", Role: match.RoleADC, Stats: match.Stats{match.Kills: 10}},
		{Champion: "Jinx", Role: match.RoleADC, Stats: match.Stats{match.Kills: 1}},
		{Champion: "Ahri", Role: match.RoleMid, Stats: match.Stats{match.Kills: 8}},
		{Champion: "Ahri", Role: match.RoleMid, Stats: match.Stats{match.Kills: 0}},
	}
	if err := p.Fit(context.Background(), xs, []int{1, 0, 1, 0}); err != nil {
		panic(err)
	}
	return p
}

func storeContract(newStore func() repository.Store) {
	ctx := context.Background()

	Convey("When nothing has been saved", func() {
		s := newStore()
		_, err := s.Load(ctx)

		Convey("Then Load reports the missing model and its location", func() {
			So(errors.Is(err, repository.ErrModelNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, s.Location())
		})
	})

	Convey("When a model is saved and loaded", func() {
		s := newStore()
		p := fitted("run-a")
		So(s.Save(ctx, p), ShouldBeNil)
		got, err := s.Load(ctx)

		Convey("Then the loaded model predicts like the saved one", func() {
			So(err, ShouldBeNil)
			So(got.Metadata.RunID, ShouldEqual, "run-a")
			v := features.Vector{Champion: "Jinx", Role: match.RoleADC, Stats: match.Stats{match.Kills: 9}}
			want, _ := p.PredictProba(v)
			have, err := got.PredictProba(v)
			So(err, ShouldBeNil)
			So(have, ShouldEqual, want)
		})

		Convey("Then saving again overwrites the slot", func() {
			So(s.Save(ctx, fitted("run-b")), ShouldBeNil)
			again, err := s.Load(ctx)
			So(err, ShouldBeNil)
			So(again.Metadata.RunID, ShouldEqual, "run-b")
		})
	})

	Convey("When saving nil", func() {
		So(errors.Is(newStore().Save(ctx, nil), repository.ErrNilModel), ShouldBeTrue)
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a fresh directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "models", "winrate_model.json")
		storeContract(func() repository.Store { return repository.NewFileStore(path) })

		Convey("When a model is saved", func() {
			s := repository.NewFileStore(path)
			So(s.Save(context.Background(), fitted("run-a")), ShouldBeNil)

			Convey("Then parent directories exist and no temp files remain", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Name(), ShouldEqual, "winrate_model.json")
				So(s.Location(), ShouldEqual, path)
			})
		})

		Convey("When the file is corrupt", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o755), ShouldBeNil)
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)
			_, err := repository.NewFileStore(path).Load(context.Background())

			Convey("Then Load fails without claiming the model is missing", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrModelNotFound), ShouldBeFalse)
			})
		})
	})
}

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store", t, func() {
		storeContract(func() repository.Store { return repository.NewRedisStore(newMockRedis()) })

		Convey("Then the default key is used", func() {
			So(repository.NewRedisStore(newMockRedis()).Location(), ShouldEqual, "redis://winrate:model")
		})

		Convey("Then a custom key is honoured", func() {
			client := newMockRedis()
			s := repository.NewRedisStore(client, repository.WithKey("models:me"))
			So(s.Save(context.Background(), fitted("run-k")), ShouldBeNil)
			_, ok := client.data["models:me"]
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a malformed redis url", t, func() {
		_, err := repository.NewRedisStoreFromURL("http://nope")
		So(err, ShouldNotBeNil)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		storeContract(func() repository.Store { return repository.NewMemoryStore() })
	})
}
