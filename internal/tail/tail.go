package tail

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultPoll = 500 * time.Millisecond

// Follower streams appended content of a file to Out until the context is
// cancelled. Growth is detected through fsnotify with a polling fallback for
// filesystems that do not deliver events.
type Follower struct {
	Path      string
	Out       io.Writer
	Poll      time.Duration // fallback poll interval, defaults to 500ms
	FromStart bool          // stream existing content before following
}

// Open validates that path exists and is readable before any streaming
// begins. It fails fast on directories and unreadable files.
func Open(path string, out io.Writer) (*Follower, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("log file %s: %w", path, err)
	}
	info, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("log file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log file %s is a directory", path)
	}
	return &Follower{Path: path, Out: out}, nil
}

// Run streams the file until ctx is cancelled. A cancelled context is a
// normal exit, not an error.
func (f *Follower) Run(ctx context.Context) error {
	// #nosec G304
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("log file %s: %w", f.Path, err)
	}
	defer func() { _ = file.Close() }()

	offset := int64(0)
	if !f.FromStart {
		if offset, err = file.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("seek %s: %w", f.Path, err)
		}
	}

	poll := f.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	// Watch the parent directory; watching the file itself breaks when a
	// rotation replaces it.
	var events chan fsnotify.Event
	if w, werr := fsnotify.NewWatcher(); werr == nil {
		if werr = w.Add(filepath.Dir(f.Path)); werr == nil {
			events = w.Events
		}
		defer func() { _ = w.Close() }()
	}

	for {
		n, cerr := io.Copy(f.Out, file)
		if cerr != nil {
			return fmt.Errorf("stream %s: %w", f.Path, cerr)
		}
		offset += n

		// Reset on truncation so a rotated-in-place file streams again.
		if info, serr := os.Stat(f.Path); serr == nil && info.Size() < offset {
			if offset, err = file.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("seek %s: %w", f.Path, err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Name != f.Path {
				continue
			}
		}
	}
}
