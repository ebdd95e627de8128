package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	spinnerFrameWidth = 2 // braille frames render about two columns wide
	spinnerAnimDelay  = 80 * time.Millisecond
	spinnerClearPad   = 5
)

// spinner animates on w while a request is in flight. Stop waits for the
// animation goroutine so nothing is drawn after the line is cleared.
type spinner struct {
	frames  []string
	message string
	w       io.Writer
	stop    chan struct{}
	wg      sync.WaitGroup
	active  bool
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		w:       w,
		stop:    make(chan struct{}),
	}
}

func (s *spinner) Start() {
	if !isTTY() {
		return
	}
	s.active = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		ticker := time.NewTicker(spinnerAnimDelay)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", style.Render(s.frames[i%len(s.frames)]), s.message)
			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) Stop() {
	if !s.active {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.active = false
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", spinnerFrameWidth+1+len(s.message)+spinnerClearPad)+"\r")
}

// runWithSpinner runs operation while a spinner animates on w.
func runWithSpinner(w io.Writer, message string, operation func() error) error {
	spin := newSpinner(w, message)
	spin.Start()
	defer spin.Stop()
	return operation()
}
