package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner animates a loading indicator on stderr while a command waits on
// the network or the wallet. The TUI draws its own.
type Spinner struct {
	s   *spinner.Spinner
	out io.Writer
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(msg string) *Spinner {
	return newSpinner(msg, os.Stderr)
}

func newSpinner(msg string, out io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = "  " + msg
	_ = s.Color("magenta")
	return &Spinner{s: s, out: out}
}

// Update replaces the message while spinning.
func (s *Spinner) Update(msg string) {
	s.s.Lock()
	s.s.Suffix = "  " + msg
	s.s.Unlock()
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.s.Start()
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	s.s.Stop()
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
