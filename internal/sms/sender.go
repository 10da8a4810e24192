// Package sms delivers text messages to users.
package sms

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("sms provider configuration is incomplete")

type Message struct {
	To   string
	From string
	Body string
}

// Receipt identifies a message accepted by the provider.
type Receipt struct {
	ID string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Disabled rejects every message. It stands in when no provider credentials are configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) (Receipt, error) {
	return Receipt{}, ErrNotConfigured
}
