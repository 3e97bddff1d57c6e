package sink

import (
	"context"
	"fmt"
	"io"

	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

// ConsoleSender prints the plain-text render in a box. Used for dry runs.
type ConsoleSender struct {
	w io.Writer
}

func NewConsole(w io.Writer) *ConsoleSender {
	return &ConsoleSender{w: w}
}

func (c *ConsoleSender) Send(ctx context.Context, _ string, msg poller.Message) error {
	box := pterm.DefaultBox.WithTitle(msg.IssueKey).Sprint(msg.Text)
	_, err := fmt.Fprintln(c.w, box)
	return err
}
