package shared

import (
	"fmt"
	"io"
)

// Notifier surfaces short, user-visible messages. It is the companion's
// stand-in for the host chat window: logs record everything, a Notifier
// carries only the lines the user is expected to act on or notice.
type Notifier interface {
	Notify(message string)
}

// WriterNotifier writes each message as a single line to an [io.Writer].
type WriterNotifier struct {
	W io.Writer
}

func (n *WriterNotifier) Notify(message string) {
	fmt.Fprintln(n.W, message)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
