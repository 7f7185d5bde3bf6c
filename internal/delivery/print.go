package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

type EventType int

const (
	EventLoaded EventType = iota + 1
	EventPrinted
	EventError
)

type Event struct {
	Type EventType
	Err  error
}

// Surface is a short-lived print target. It must be removed exactly once
// after use.
type Surface interface {
	Load(ctx context.Context, doc *render.Document) error
	Print(ctx context.Context) error
	Events() <-chan Event
	Remove() error
}

var errSurfaceClosed = errors.New("print surface closed unexpectedly")

// cleanup runs remove for whichever trigger arrives first.
type cleanup struct {
	once   sync.Once
	remove func() error
	reason string
}

func newCleanup(remove func() error) *cleanup {
	return &cleanup{remove: remove}
}

// trigger reports whether this call was the one that removed the surface.
func (c *cleanup) trigger(reason string) bool {
	fired := false

	c.once.Do(func() {
		fired = true
		c.reason = reason

		if err := c.remove(); err != nil {
			slog.Warn("failed to remove print surface", "reason", reason, "error", err)
		}
	})

	return fired
}

type printChannel struct {
	surfaces func() Surface
	timeout  time.Duration
}

func (c *printChannel) ready(context.Context, *job) error {
	return nil
}

func (c *printChannel) deliver(ctx context.Context, j *job) (string, error) {
	surface := c.surfaces()
	guard := newCleanup(surface.Remove)

	if err := surface.Load(ctx, j.doc); err != nil {
		guard.trigger("error")
		return "", newError(KindTransportFailed, ChannelPrint, "The document could not be prepared for printing.", err)
	}

	// The timeout covers printing, not spooling.
	timedOut := make(chan struct{})
	timer := time.AfterFunc(c.timeout, func() {
		if guard.trigger("timeout") {
			close(timedOut)
		}
	})
	defer timer.Stop()

	requested := false

	for {
		select {
		case ev, ok := <-surface.Events():
			if !ok {
				guard.trigger("closed")
				return "", newError(KindTransportFailed, ChannelPrint, "The printer stopped responding.", errSurfaceClosed)
			}

			switch ev.Type {
			case EventLoaded:
				select {
				case <-timedOut:
					return "", newError(KindTransportFailed, ChannelPrint, "The printer did not respond in time.", ErrPrintTimeout)
				default:
				}

				if err := surface.Print(ctx); err != nil {
					guard.trigger("error")
					return "", newError(KindTransportFailed, ChannelPrint, "The print request failed.", err)
				}

				requested = true
			case EventPrinted:
				guard.trigger("printed")
				return "Sent to printer", nil
			case EventError:
				guard.trigger("error")
				return "", newError(KindTransportFailed, ChannelPrint, "The print request failed.", ev.Err)
			}
		case <-timedOut:
			if requested {
				return "Print job submitted", nil
			}

			return "", newError(KindTransportFailed, ChannelPrint, "The printer did not respond in time.", ErrPrintTimeout)
		case <-ctx.Done():
			guard.trigger("cancelled")
			return "", newError(KindTransportFailed, ChannelPrint, "Printing was interrupted.", ctx.Err())
		}
	}
}

// SpoolSurface spools the document to a temporary file and submits it to the
// system print command.
type SpoolSurface struct {
	fs      afero.Fs
	command string
	events  chan Event

	mu   sync.Mutex
	path string
}

func NewSpoolSurface(fs afero.Fs, command string) *SpoolSurface {
	return &SpoolSurface{fs: fs, command: command, events: make(chan Event, 2)}
}

func (s *SpoolSurface) Load(_ context.Context, doc *render.Document) error {
	f, err := afero.TempFile(s.fs, "", "invoice-*.pdf")
	if err != nil {
		return fmt.Errorf("creating spool file: %w", err)
	}

	s.mu.Lock()
	s.path = f.Name()
	s.mu.Unlock()

	if _, err := f.Write(doc.Data); err != nil {
		f.Close()
		return fmt.Errorf("writing spool file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing spool file: %w", err)
	}

	s.events <- Event{Type: EventLoaded}

	return nil
}

func (s *SpoolSurface) Print(ctx context.Context) error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return errors.New("nothing loaded")
	}

	cmd := exec.CommandContext(ctx, s.command, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.command, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			s.events <- Event{Type: EventError, Err: fmt.Errorf("%s: %w", s.command, err)}
			return
		}

		s.events <- Event{Type: EventPrinted}
	}()

	return nil
}

func (s *SpoolSurface) Events() <-chan Event {
	return s.events
}

func (s *SpoolSurface) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	if err := s.fs.Remove(s.path); err != nil {
		return fmt.Errorf("removing spool file: %w", err)
	}

	return nil
}
