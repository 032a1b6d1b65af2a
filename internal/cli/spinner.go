package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// spinner redraws one status line on w until stopped or until its parent
// context ends. Scene workers may call update concurrently.
type spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	stop   context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	message string
	drawn   int // widest line drawn, in runes
	running bool
}

func newSpinner(parent context.Context, w io.Writer, message string) *spinner {
	ctx, stop := context.WithCancel(parent)
	return &spinner{w: w, parent: parent, ctx: ctx, stop: stop, done: make(chan struct{}), message: message}
}

// Start begins drawing in the background.
func (s *spinner) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.erase()
				return
			case <-tick.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

func (s *spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(string(frame)), styleMuted.Render(s.message))
	s.drawn = max(s.drawn, 2+utf8.RuneCountInString(s.message))
}

func (s *spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
	}
}

// Update replaces the message shown from the next frame on.
func (s *spinner) Update(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Stop erases the line and waits for the drawing goroutine. Repeated calls
// and calls without Start are no-ops.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.stop()
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if running {
			<-s.done
		}
	})
}

// Cancelled reports whether the parent context ended, as opposed to the
// spinner being stopped.
func (s *spinner) Cancelled() bool { return s.parent.Err() != nil }
