package view

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/invoicer/internal/status"
)

var errNoProgram = errors.New("console is not running")

// NoticeMsg is a status notice forwarded into the program.
type NoticeMsg status.Notice

// PhoneRequestMsg asks the console for a chat number on behalf of a delivery
// running in the background. The delivery waits until the console answers.
type PhoneRequestMsg struct {
	Name  string
	reply chan<- phoneReply
}

type phoneReply struct {
	phone string
	err   error
}

// Bridge carries notices and phone prompts from background deliveries into
// the running program. It satisfies status.Notifier and delivery.PhonePrompt.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Attach routes messages to send, usually (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.send = send
}

func (b *Bridge) dispatch(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()

	if send == nil {
		return false
	}

	send(msg)

	return true
}

func (b *Bridge) Notify(_ context.Context, n status.Notice) {
	b.dispatch(NoticeMsg(n))
}

func (b *Bridge) Phone(ctx context.Context, name string) (string, error) {
	reply := make(chan phoneReply, 1)

	if !b.dispatch(PhoneRequestMsg{Name: name, reply: reply}) {
		return "", errNoProgram
	}

	select {
	case r := <-reply:
		return r.phone, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
