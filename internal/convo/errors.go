package convo

import "errors"

// Session error conditions, surfaced to the presentation layer via
// Session.LastError / Notify.ErrorChanged rather than panics. ErrUnavailable
// marks a channel that could not be constructed at all, as opposed to
// ErrConnectionLost, which a rebind can recover from.
var (
	ErrNotConnected          = errors.New("convo: channel not open")
	ErrConnectionLost        = errors.New("convo: connection lost")
	ErrMalformedFrame        = errors.New("convo: malformed frame")
	ErrAttachmentUnavailable = errors.New("convo: staged attachment unavailable")
	ErrUnavailable           = errors.New("convo: messaging service unavailable")
)
