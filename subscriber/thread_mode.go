package subscriber

import (
	"fmt"
	"strings"
)

// ThreadMode selects on which goroutine a dispatcher delivers an event.
type ThreadMode uint8

const (
	// Main delivers on the dispatcher's designated main loop. It is the default.
	Main ThreadMode = iota
	// Posting delivers synchronously on the goroutine that posted the event.
	Posting
	// Background delivers on a single shared background goroutine.
	Background
	// Async delivers on a fresh goroutine per event.
	Async
)

// String returns the lowercase mode name used in directives.
func (m ThreadMode) String() string {
	switch m {
	case Main:
		return "main"
	case Posting:
		return "posting"
	case Background:
		return "background"
	case Async:
		return "async"
	default:
		return "unknown"
	}
}

// GoName returns the identifier of the constant in this package.
func (m ThreadMode) GoName() string {
	switch m {
	case Posting:
		return "Posting"
	case Background:
		return "Background"
	case Async:
		return "Async"
	default:
		return "Main"
	}
}

// ParseThreadMode converts a directive value to a ThreadMode.
func ParseThreadMode(s string) (ThreadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main", "":
		return Main, nil
	case "posting":
		return Posting, nil
	case "background":
		return Background, nil
	case "async":
		return Async, nil
	default:
		return Main, fmt.Errorf("invalid thread mode: %q (expected: main|posting|background|async)", s)
	}
}
