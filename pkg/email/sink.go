package email

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/rqueue/pkg/queue"
)

// Sink delivers queue items as emails to a fixed recipient.
type Sink struct {
	sender EmailSender
	to     string
}

// NewSink creates a sink sending through sender to the address to.
func NewSink(sender EmailSender, to string) (*Sink, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(to) {
		return nil, fmt.Errorf("%w: recipient must be a valid email address", ErrInvalidConfig)
	}
	return &Sink{sender: sender, to: to}, nil
}

// NewSinkFromConfig picks Postmark when tokens are configured and the
// on-disk DevSender otherwise.
func NewSinkFromConfig(cfg Config) (*Sink, error) {
	var sender EmailSender
	if cfg.UsePostmark() {
		pc, err := NewPostmarkClient(cfg)
		if err != nil {
			return nil, err
		}
		sender = pc
	} else {
		sender = NewDevSender(cfg.DevDir)
	}
	return NewSink(sender, cfg.NotifyTo)
}

// Deliver implements queue.Sink.
func (s *Sink) Deliver(ctx context.Context, item queue.Dequeued) error {
	msg, err := BuildMessage(ctx, item, s.to)
	if err != nil {
		return err
	}
	return s.sender.SendEmail(ctx, msg)
}
