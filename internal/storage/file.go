package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const fileSlotExt = ".json"

// FileSlot keeps the value in <dir>/<key>.json. Writes go to a temp file in the
// same directory and are renamed into place, so readers never see a torn value.
type FileSlot struct {
	key  string
	dir  string
	path string
}

func NewFileSlot(dir, key string) (*FileSlot, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	return &FileSlot{
		key:  key,
		dir:  dir,
		path: filepath.Join(dir, key+fileSlotExt),
	}, nil
}

func (s *FileSlot) Key() string { return s.key }

// Path is where the value lives on disk.
func (s *FileSlot) Path() string { return s.path }

func (s *FileSlot) Read(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	return data, true, nil
}

func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("storage: create dir %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", s.path, err)
	}

	committed = true
	return nil
}

func (s *FileSlot) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", s.path, err)
	}
	return nil
}

// Ping checks that the directory exists or can be created.
func (s *FileSlot) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("storage: dir %s not usable: %w", s.dir, err)
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage: %s is not a directory", s.dir)
	}
	return nil
}
