package service

import "errors"

var (
	// ErrOrderNotFound marks a lookup for a missing order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrMessengerNotReady marks a send attempted while the session is down.
	ErrMessengerNotReady = errors.New("whatsapp session not ready")
	// ErrPhoneMissing marks an order without any usable phone digits.
	ErrPhoneMissing = errors.New("order has no usable phone number")
	// ErrSignatureInvalid marks a webhook that failed HMAC verification.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
)
