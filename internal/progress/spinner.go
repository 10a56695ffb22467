// Package progress renders CLI progress feedback: an indeterminate
// spinner for the scan and resolve stages and a bounded progress bar
// for the parse stage (file count known before the first file starts).
// Both are silenced when stderr is not a terminal.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner displays an animated spinner on stderr for long-running
// operations of unknown length. Automatically suppressed when stderr
// is not a TTY (piped output, CI).
type Spinner struct {
	mu      sync.Mutex
	frames  []string
	current int
	message string
	active  bool
	isTTY   bool
	writer  *os.File
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a Spinner writing to w (typically os.Stderr).
func NewSpinner(w *os.File) *Spinner {
	return &Spinner{
		frames: []string{"|", "/", "-", "\\"},
		writer: w,
		isTTY:  isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()),
		done:   make(chan struct{}),
	}
}

// Start begins displaying the spinner with message. A no-op when the
// writer is not a TTY.
func (s *Spinner) Start(message string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	s.active = true
	s.message = message
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	const interval = 100 * time.Millisecond
	s.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.active {
					s.mu.Unlock()
					return
				}
				frame := s.frames[s.current%len(s.frames)]
				msg := s.message
				s.current++
				s.mu.Unlock()
				fmt.Fprintf(s.writer, "\r%s %s", frame, msg)
			}
		}
	}()
}

// Update changes the spinner message; the next tick shows it.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner, printing finalMessage if non-empty.
func (s *Spinner) Stop(finalMessage string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if finalMessage != "" {
		fmt.Fprintf(s.writer, "\r%s\n", finalMessage)
	} else {
		fmt.Fprintf(s.writer, "\r\033[K")
	}
}
