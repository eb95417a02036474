package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// File stores each group as a JSON object of strings at
// <dir>/widgets/<group>.json. Writes go to a temp file that is renamed over
// the target. Update holds an exclusive OS lock on <group>.lock next to the
// data file, so stores opened on the same directory by different processes
// serialize their read-modify-write passes.
type File struct {
	dir   string
	locks groupLocks

	// Debounce coalesces bursts of file events in Watch.
	Debounce time.Duration
}

// NewFile opens (and creates) a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, storageErr("store.NewFile", "", fmt.Errorf("empty data directory"))
	}
	wd := filepath.Join(dir, "widgets")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		return nil, storageErr("store.NewFile", "", fmt.Errorf("create %s: %w", wd, err))
	}
	return &File{dir: wd, Debounce: 100 * time.Millisecond}, nil
}

// Path returns the file backing group.
func (f *File) Path(group string) string {
	return filepath.Join(f.dir, SanitizeGroup(group)+".json")
}

func (f *File) Get(_ context.Context, group, key string) (string, error) {
	vals, err := f.read(group)
	if err != nil {
		return "", storageErr("store.File.Get", group, err)
	}
	v, ok := vals[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (f *File) Set(ctx context.Context, group, key, value string) error {
	return f.Update(ctx, group, func(v Values) error {
		v[key] = value
		return nil
	})
}

func (f *File) Update(ctx context.Context, group string, fn func(Values) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := f.lockGroup(ctx, SanitizeGroup(group))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return storageErr("store.File.Update", group, err)
	}
	defer unlock()

	vals, err := f.read(group)
	if err != nil {
		return storageErr("store.File.Update", group, err)
	}
	if err := fn(vals); err != nil {
		return err
	}
	data, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		return storageErr("store.File.Update", group, err)
	}
	return storageErr("store.File.Update", group, writeAtomic(f.Path(group), data))
}

func (f *File) Close() error { return nil }

// lockRetry is how often a contended group lock file is polled.
const lockRetry = 5 * time.Millisecond

// lockGroup takes the in-process mutex and then the group's lock file.
func (f *File) lockGroup(ctx context.Context, safe string) (func(), error) {
	unlock := f.locks.lock(safe)
	fl := flock.New(filepath.Join(f.dir, safe+".lock"))
	ok, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil || !ok {
		unlock()
		if err == nil {
			err = fmt.Errorf("lock %s: not acquired", fl.Path())
		}
		return nil, err
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			log.Warn().Err(err).Str("path", fl.Path()).Msg("widget store unlock failed")
		}
		unlock()
	}, nil
}

// read loads a group. A missing or empty file is an empty group; a corrupt
// one is logged and treated as empty.
func (f *File) read(group string) (Values, error) {
	data, err := os.ReadFile(f.Path(group))
	if os.IsNotExist(err) {
		return Values{}, nil
	}
	if err != nil {
		return nil, err
	}
	vals := Values{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return vals, nil
	}
	if err := json.Unmarshal(data, &vals); err != nil {
		log.Warn().Err(err).Str("group", group).Msg("discarding corrupt widget store file")
		return Values{}, nil
	}
	return vals, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// Watch reports changed groups until ctx ends. Events for the same group
// that arrive within f.Debounce of each other are reported once. The group
// passed to fn is the sanitized file name.
func (f *File) Watch(ctx context.Context, fn func(group string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return storageErr("store.File.Watch", "", err)
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return storageErr("store.File.Watch", "", err)
	}

	go func() {
		defer w.Close()
		debouncers := make(map[string]func(func()))
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".json") || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
					continue
				}
				group := strings.TrimSuffix(filepath.Base(ev.Name), ".json")
				d, ok := debouncers[group]
				if !ok {
					d = debounce.New(f.Debounce)
					debouncers[group] = d
				}
				d(func() { fn(group) })
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("dir", f.dir).Msg("widget store watch error")
			}
		}
	}()
	return nil
}
