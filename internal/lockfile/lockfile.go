// Package lockfile implements the advisory status file polled by the
// external test runner while a simulation is in flight.
//
// The file moves through three observable states:
//
//	<Engine>_running  -> written by Acquire
//	<Engine>_done     -> written by MarkDone
//	(absent)          -> after Release
//
// This is signalling, not mutual exclusion. Nothing here prevents two
// harness processes from using the same path.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Status token suffixes.
const (
	SuffixRunning = "_running"
	SuffixDone    = "_done"
)

// Lock is a held status file.
type Lock struct {
	path     string
	engine   string
	done     bool
	released bool
}

// RunningToken returns the token written while the engine runs.
func RunningToken(engine string) string { return engine + SuffixRunning }

// DoneToken returns the token written once the run has finished.
func DoneToken(engine string) string { return engine + SuffixDone }

// Acquire creates (or truncates) the file at path and writes the running token.
func Acquire(path, engine string) (*Lock, error) {
	if path == "" {
		return nil, errors.New("lockfile: empty path")
	}
	if err := os.WriteFile(path, []byte(RunningToken(engine)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	return &Lock{path: path, engine: engine}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// MarkDone overwrites the file with the done token.
func (l *Lock) MarkDone() error {
	if l.released {
		return nil
	}
	if err := os.WriteFile(l.path, []byte(DoneToken(l.engine)), 0644); err != nil {
		return fmt.Errorf("failed to mark lock file done: %w", err)
	}
	l.done = true
	return nil
}

// Release marks the lock done if that has not happened yet, then removes
// the file. Calling Release more than once is safe.
func (l *Lock) Release() error {
	if l.released {
		return nil
	}
	var markErr error
	if !l.done {
		markErr = l.MarkDone()
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(markErr, fmt.Errorf("failed to remove lock file: %w", err))
	}
	l.released = true
	return markErr
}

// Read returns the current token stored at path.
// A missing file yields ("", fs.ErrNotExist).
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
