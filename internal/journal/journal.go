// Package journal appends relay events to date-organized JSONL files, one
// file per feed.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/loginbrowser/internal/relay"
)

var ErrClosed = errors.New("journal is closed")

type line struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Journal writes one JSON line per event under dir/<date>/<feed>.jsonl.
type Journal struct {
	dir       string
	maxSizeMB int
	now       func() time.Time

	mu     sync.Mutex
	date   string
	files  map[string]*lumberjack.Logger
	closed bool
}

func New(dir string, maxSizeMB int) *Journal {
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &Journal{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		now:       func() time.Time { return time.Now().UTC() },
		files:     make(map[string]*lumberjack.Logger),
	}
}

// Write appends evt to its feed file, switching directories when the UTC
// date changes.
func (j *Journal) Write(evt relay.Event) error {
	rec := line{ID: evt.ID, Type: evt.Type, Time: evt.Time}
	if json.Valid([]byte(evt.Payload)) {
		rec.Payload = json.RawMessage(evt.Payload)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("journal: encode %s/%s: %w", evt.Feed, evt.Type, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	if date := j.now().Format("2006-01-02"); date != j.date {
		j.rotateLocked(date)
	}
	w, err := j.fileLocked(evt.Feed)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("journal: write %s: %w", evt.Feed, err)
	}
	return nil
}

// Run subscribes to broker and writes every event until ctx is done.
func (j *Journal) Run(ctx context.Context, broker *relay.Broker) {
	id, ch := broker.Subscribe()
	defer broker.Unsubscribe(id)
	slog.Info("event journal started", "dir", j.dir)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := j.Write(evt); err != nil {
				slog.Warn("event journal write failed", "feed", evt.Feed, "type", evt.Type, "error", err)
			}
		}
	}
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return j.closeFilesLocked()
}

func (j *Journal) fileLocked(feed string) (*lumberjack.Logger, error) {
	if feed == "" {
		feed = "misc"
	}
	if w, ok := j.files[feed]; ok {
		return w, nil
	}
	dir := filepath.Join(j.dir, j.date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, feed+".jsonl"),
		MaxSize:    j.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
	}
	j.files[feed] = w
	slog.Debug("opened journal file", "file", w.Filename)
	return w, nil
}

func (j *Journal) rotateLocked(date string) {
	if err := j.closeFilesLocked(); err != nil {
		slog.Warn("closing journal files failed", "error", err)
	}
	j.date = date
}

func (j *Journal) closeFilesLocked() error {
	var errs []error
	for feed, w := range j.files {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(j.files, feed)
	}
	return errors.Join(errs...)
}
