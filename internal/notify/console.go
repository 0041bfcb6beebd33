package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Console prints coloured, timestamped status lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole writes to out, or to color.Output when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = color.Output
	}
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, ev domain.Event) {
	if ev.Kind == domain.EventNoOp {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "[%s] %s\n", ev.At.Format("15:04:05"), colorFor(ev.Kind).Sprint(Describe(ev)))
}

func (c *Console) Report(_ context.Context, err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("ERROR"), err)
}

func colorFor(kind domain.EventKind) *color.Color {
	switch kind {
	case domain.EventEntry, domain.EventReEntry:
		return color.New(color.FgGreen)
	case domain.EventExit:
		return color.New(color.FgCyan)
	case domain.EventBlockedExit, domain.EventBlockedReEntry:
		return color.New(color.FgYellow)
	case domain.EventUnregistered:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}
