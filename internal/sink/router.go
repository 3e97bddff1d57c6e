// Package sink delivers rendered issue messages to chat destinations.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

var ErrUnknownDestination = errors.New("unknown destination")

const (
	Symphony = "symphony"
	Telegram = "telegram"
	Console  = "console"
)

// Destination is a parsed destination identifier such as "symphony:<stream>",
// "telegram:<chat>" or "console".
type Destination struct {
	Scheme string
	Target string
}

func (d Destination) String() string {
	if d.Target == "" {
		return d.Scheme
	}
	return d.Scheme + ":" + d.Target
}

func ParseDestination(s string) (Destination, error) {
	s = strings.TrimSpace(s)
	if s == Console {
		return Destination{Scheme: Console}, nil
	}
	scheme, target, ok := strings.Cut(s, ":")
	if !ok || target == "" {
		return Destination{}, fmt.Errorf("%w: %q", ErrUnknownDestination, s)
	}
	switch scheme {
	case Symphony, Telegram:
		return Destination{Scheme: scheme, Target: target}, nil
	}
	return Destination{}, fmt.Errorf("%w: %q", ErrUnknownDestination, s)
}

// Sender posts one message to a target within its own scheme.
type Sender interface {
	Send(ctx context.Context, target string, msg poller.Message) error
}

// Router dispatches each delivery to the Sender registered for the
// destination's scheme.
type Router struct {
	senders map[string]Sender
	log     *pterm.Logger
}

func NewRouter(log *pterm.Logger) *Router {
	return &Router{senders: make(map[string]Sender), log: log}
}

func (r *Router) Register(scheme string, s Sender) *Router {
	r.senders[scheme] = s
	return r
}

// Deliver implements poller.Sink. Whitespace-only messages are dropped
// without contacting the destination.
func (r *Router) Deliver(ctx context.Context, destination string, msg poller.Message) error {
	dest, err := ParseDestination(destination)
	if err != nil {
		return err
	}
	s, ok := r.senders[dest.Scheme]
	if !ok {
		return fmt.Errorf("%w: no sender for %s", ErrUnknownDestination, dest.Scheme)
	}
	if strings.TrimSpace(msg.Text) == "" {
		r.log.Debug("skipping empty message", r.log.Args("issue", msg.IssueKey, "destination", destination))
		return nil
	}
	if err := s.Send(ctx, dest.Target, msg); err != nil {
		return fmt.Errorf("%s: %w", dest, err)
	}
	return nil
}
