// Package mailtest provides a recording mail transport for tests.
package mailtest

import (
	"context"
	"errors"
	"sync"

	"newsroom/internal/services"
	"newsroom/web"
)

// ErrRejected is returned for recipients registered with FailFor.
var ErrRejected = errors.New("mailtest: recipient rejected")

// Transport records every attempted message.
type Transport struct {
	mu       sync.Mutex
	attempts []services.Message
	failing  map[string]bool
}

func New() *Transport {
	return &Transport{failing: make(map[string]bool)}
}

// FailFor makes every send to addr fail after being recorded.
func (t *Transport) FailFor(addr string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failing[addr] = true
}

func (t *Transport) Send(_ context.Context, msg services.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts = append(t.attempts, msg)
	if t.failing[msg.To] {
		return ErrRejected
	}
	return nil
}

// Attempts returns a copy of all recorded messages, failed ones included.
func (t *Transport) Attempts() []services.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]services.Message, len(t.attempts))
	copy(out, t.attempts)
	return out
}

// Recipients lists the To address of each attempt in order.
func (t *Transport) Recipients() []string {
	var to []string
	for _, m := range t.Attempts() {
		to = append(to, m.To)
	}
	return to
}

// NewMailService wires a MailService with the embedded templates to t.
func NewMailService(t *Transport) *services.MailService {
	mail, err := services.NewMailService(t, web.FS)
	if err != nil {
		panic(err)
	}
	return mail
}
