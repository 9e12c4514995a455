package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/winrate/internal/domain/pipeline"
	"github.com/okian/winrate/pkg/logger"
	"github.com/okian/winrate/pkg/metrics"
)

const backendFile = "file"

// FileStore keeps the model as a JSON file. Saves go to a temp file in the
// same directory and are renamed over the slot, so readers never observe a
// partial write.
type FileStore struct {
	path string
	opts options
}

// NewFileStore returns a store for the model file at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{path: path, opts: newOptions(opts)}
}

// Location returns the file path.
func (s *FileStore) Location() string { return s.path }

// Save writes p over the slot, creating parent directories as needed.
func (s *FileStore) Save(ctx context.Context, p *pipeline.Pipeline) (err error) {
	start := time.Now()
	defer func() { observe(backendFile, "save", start, err) }()

	if p == nil {
		return ErrNilModel
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("create model dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync model: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	if err = os.Chmod(tmp.Name(), s.opts.fileMode); err != nil {
		return fmt.Errorf("chmod model: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace model %s: %w", s.path, err)
	}

	s.opts.log.Debug(ctx, "model saved",
		logger.String("path", s.path),
		logger.String("run_id", p.Metadata.RunID),
		logger.Int("bytes", len(b)))
	return nil
}

// Load reads the model file. A missing file yields ErrModelNotFound naming the path.
func (s *FileStore) Load(ctx context.Context) (p *pipeline.Pipeline, err error) {
	start := time.Now()
	defer func() { observe(backendFile, "load", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, s.path)
		}
		return nil, fmt.Errorf("read model %s: %w", s.path, err)
	}
	return decode(b, s.path)
}

func decode(b []byte, where string) (*pipeline.Pipeline, error) {
	p := &pipeline.Pipeline{}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", where, err)
	}
	if !p.Fitted() {
		return nil, fmt.Errorf("decode model %s: %w", where, pipeline.ErrNotFitted)
	}
	return p, nil
}

func observe(backend, op string, start time.Time, err error) {
	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.RecordStoreOperation(backend, op, status, time.Since(start))
}
