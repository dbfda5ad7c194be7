// Package backup writes point-in-time copies of the task snapshot to a
// directory, optionally age-encrypted, and reads them back for restore.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filippo.io/age"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/dohr-michael/taskboard/internal/secrets"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

const (
	prefix       = "tasks-"
	plainExt     = ".json"
	encryptedExt = ".json.age"
	stampLayout  = "20060102T150405.000Z"
	pattern      = prefix + "*.{json,json.age}"
)

var (
	// ErrEmpty is returned when there is nothing to back up.
	ErrEmpty = errors.New("no tasks to back up")
	// ErrNeedIdentity is returned when reading an encrypted backup without a key.
	ErrNeedIdentity = errors.New("backup is encrypted, an age identity is required")
)

// Info describes one backup file.
type Info struct {
	Path      string
	Time      time.Time
	Encrypted bool
	Size      int64
}

// Name returns the file name of the backup.
func (i Info) Name() string { return filepath.Base(i.Path) }

// Write stores snapshot in dir under a name derived from now. With a
// non-nil recipient the file is age-encrypted.
func Write(dir string, snapshot []tasks.Task, recipient age.Recipient, now time.Time) (Info, error) {
	if len(snapshot) == 0 {
		return Info{}, ErrEmpty
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("create backup dir: %w", err)
	}

	ext := plainExt
	if recipient != nil {
		ext = encryptedExt
	}
	stamp := now.UTC().Truncate(time.Millisecond)
	path := filepath.Join(dir, prefix+stamp.Format(stampLayout)+ext)

	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return Info{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeBody(tmp, data, recipient); err != nil {
		tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Info{}, fmt.Errorf("rename backup: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, Time: stamp, Encrypted: recipient != nil, Size: st.Size()}, nil
}

func writeBody(w io.Writer, data []byte, recipient age.Recipient) error {
	if recipient == nil {
		_, err := w.Write(data)
		return err
	}
	enc, err := secrets.EncryptTo(w, recipient)
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		return fmt.Errorf("encrypt backup: %w", err)
	}
	return enc.Close()
}

// List returns the backups in dir, newest first. A missing dir has none.
func List(dir string) ([]Info, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	names, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	out := make([]Info, 0, len(names))
	for _, name := range names {
		info, ok := parseName(name)
		if !ok {
			continue
		}
		info.Path = filepath.Join(dir, name)
		if st, err := os.Stat(info.Path); err == nil {
			info.Size = st.Size()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func parseName(name string) (Info, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return Info{}, false
	}
	var info Info
	switch {
	case strings.HasSuffix(rest, encryptedExt):
		rest, info.Encrypted = strings.TrimSuffix(rest, encryptedExt), true
	case strings.HasSuffix(rest, plainExt):
		rest = strings.TrimSuffix(rest, plainExt)
	default:
		return Info{}, false
	}
	ts, err := time.Parse(stampLayout, rest)
	if err != nil {
		return Info{}, false
	}
	info.Time = ts
	return info, true
}

// Prune deletes all but the keep newest backups and returns what it removed.
// keep <= 0 keeps everything.
func Prune(dir string, keep int) ([]Info, error) {
	if keep <= 0 {
		return nil, nil
	}
	list, err := List(dir)
	if err != nil || len(list) <= keep {
		return nil, err
	}

	var removed []Info
	for _, info := range list[keep:] {
		if err := os.Remove(info.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", info.Name(), err)
		}
		removed = append(removed, info)
	}
	return removed, nil
}

// Read loads and validates the backup at path. identity may be nil for
// plain backups.
func Read(path string, identity age.Identity) ([]tasks.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".age") {
		if identity == nil {
			return nil, ErrNeedIdentity
		}
		if r, err = secrets.DecryptFrom(f, identity); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	list, err := tasks.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return list, nil
}
