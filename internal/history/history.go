// SPDX-License-Identifier: MPL-2.0

// Package history records devs invocations in an append-only file.
//
// Each line holds the raw arguments of one invocation joined by commas and is
// terminated with the platform line ending.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"devs-cli/pkg/platform"
)

const (
	// FileName is the history file name inside the config directory.
	FileName = "history"
	// Separator joins the arguments of an invocation.
	Separator = ","
)

type (
	// Recorder appends invocations to the history file at Path.
	Recorder struct {
		Path string
		// EOL terminates each line. Empty means platform.EOL.
		EOL string

		mu sync.Mutex
	}

	// Entry is one recorded invocation.
	Entry struct {
		Args []string
	}
)

// NewRecorder returns a Recorder writing to dir/history.
func NewRecorder(dir string) *Recorder {
	return &Recorder{Path: filepath.Join(dir, FileName)}
}

// Record appends argv as a single line, creating the file and its directory
// when missing.
func (r *Recorder) Record(argv []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	_, werr := f.WriteString(Line(argv, r.eol()))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write history: %w", werr)
	}
	return nil
}

// Entries returns the most recent limit entries, oldest first. A limit of zero
// or less returns every entry. A missing file yields no entries.
func (r *Recorder) Entries(limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	entries := []Entry{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// bufio.ScanLines already drops a trailing \r.
		line := sc.Text()
		if line == "" {
			continue
		}
		entries = append(entries, Entry{Args: strings.Split(line, Separator)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Line renders argv as a history line terminated by eol.
func Line(argv []string, eol string) string {
	return strings.Join(argv, Separator) + eol
}

// String renders the entry the way it is stored, without a terminator.
func (e Entry) String() string {
	return strings.Join(e.Args, Separator)
}

func (r *Recorder) eol() string {
	if r.EOL != "" {
		return r.EOL
	}
	return platform.EOL
}
