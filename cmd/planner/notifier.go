package main

import (
	"fmt"
	"io"
	"sync"

	"tudva/backend/internal/scheduler"
)

// consoleNotifier 将引擎通知输出到终端
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) Notify(level scheduler.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prefix := "·"
	switch level {
	case scheduler.LevelSuccess:
		prefix = "✓"
	case scheduler.LevelError:
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, message)
}
