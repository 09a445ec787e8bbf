package whatsapp

import (
	"context"
	"errors"
)

// ErrNotRegistered is returned when the gateway affirmatively reports that a
// phone number has no WhatsApp account. Transport-level failures are NOT
// mapped to this error; callers fall back instead of hard-failing.
var ErrNotRegistered = errors.New("number not registered on whatsapp")

// Contact is the resolved identity behind an inbound sender id. Sender ids
// may be obfuscated forms; Number carries the real phone when known.
type Contact struct {
	Number string `json:"number"`
	ID     string `json:"id"`
}

// MessageEvent is an inbound message as delivered by the gateway. FromMe
// marks self-sent messages; both directions are valid confirmation triggers.
type MessageEvent struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Body   string `json:"body"`
	FromMe bool   `json:"from_me"`
}

// Status is the gateway session state.
type Status struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	QR        string `json:"qr,omitempty"`
}

// Messenger is the messaging capability the confirmation flow consumes.
// Session bootstrap and QR pairing live behind it.
type Messenger interface {
	// Ready reports whether the session can send messages right now.
	Ready() bool
	// Status returns the session state for the operator dashboard.
	Status(ctx context.Context) (Status, error)
	// SendMessage delivers text to a chat id.
	SendMessage(ctx context.Context, chatID, text string) error
	// NumberID resolves a bare phone to its canonical chat id. Returns
	// ErrNotRegistered when the gateway reports the number does not exist.
	NumberID(ctx context.Context, phone string) (string, error)
	// ResolveContact resolves an inbound sender id to its contact.
	ResolveContact(ctx context.Context, senderID string) (Contact, error)
}
