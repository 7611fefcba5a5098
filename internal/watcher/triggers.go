package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultPollInterval = 500 * time.Millisecond

// PollTrigger fires when the modification time of a file changes. A missing
// file has a zero modification time, so deleting and recreating it fires too.
type PollTrigger struct {
	path     string
	interval time.Duration
}

func NewPollTrigger(path string, interval time.Duration) *PollTrigger {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollTrigger{path: path, interval: interval}
}

func (p *PollTrigger) Run(ctx context.Context, notify func(reason string)) error {
	last := modTime(p.path)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := modTime(p.path)
			if !current.Equal(last) {
				last = current
				notify(fmt.Sprintf("%s changed", filepath.Base(p.path)))
			}
		}
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// NotifyTrigger fires on file system events for a file. It watches the
// parent directory so editors that save by renaming are picked up.
type NotifyTrigger struct {
	path string
}

func NewNotifyTrigger(path string) *NotifyTrigger {
	return &NotifyTrigger{path: filepath.Clean(path)}
}

func (n *NotifyTrigger) Run(ctx context.Context, notify func(reason string)) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(filepath.Dir(n.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(n.path), err)
	}

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != n.path || event.Op&relevant == 0 {
				continue
			}
			notify(fmt.Sprintf("%s changed", filepath.Base(n.path)))
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARNING: File watcher error: %v", err)
		}
	}
}
