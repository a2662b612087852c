package proxyarp

import (
	"errors"
	"log/slog"
	"strconv"
)

// A DiscardReason describes why a Server did not answer a frame.
type DiscardReason int

// Possible DiscardReason values.
const (
	DiscardTooShort DiscardReason = iota + 1
	DiscardNotARP
	DiscardUnsupportedAddressFamily
	DiscardNotRequest
	DiscardNoMatch
)

// String returns a short description of r.
func (r DiscardReason) String() string {
	switch r {
	case DiscardTooShort:
		return "too short"
	case DiscardNotARP:
		return "not ARP"
	case DiscardUnsupportedAddressFamily:
		return "unsupported address family"
	case DiscardNotRequest:
		return "not a request"
	case DiscardNoMatch:
		return "no matching host"
	default:
		return "DiscardReason(" + strconv.Itoa(int(r)) + ")"
	}
}

// discardReason maps a ParseRequest error to a DiscardReason.
func discardReason(err error) DiscardReason {
	switch {
	case errors.Is(err, ErrTooShort):
		return DiscardTooShort
	case errors.Is(err, ErrUnsupportedAddressFamily):
		return DiscardUnsupportedAddressFamily
	default:
		return DiscardNotARP
	}
}

// NewLogObserver returns an Observer which writes events to l.  Discarded
// frames and sent replies are logged at debug level, send failures at warn
// level and fatal errors at error level.  If l is nil, slog.Default is used.
func NewLogObserver(l *slog.Logger) Observer {
	if l == nil {
		l = slog.Default()
	}

	return &logObserver{l: l}
}

type logObserver struct {
	l *slog.Logger
}

func (o *logObserver) FrameDiscarded(reason DiscardReason, r *Request) {
	if r == nil {
		o.l.Debug("frame discarded", "reason", reason)
		return
	}

	o.l.Debug("request ignored",
		"reason", reason,
		"op", r.Operation,
		"who_has", r.TargetIP,
		"tell", r.SenderIP,
		"sender_mac", r.SenderHardwareAddr.String(),
	)
}

func (o *logObserver) ReplySent(r *Reply) {
	o.l.Debug("reply sent",
		"ip", r.SenderIP,
		"mac", r.SenderHardwareAddr.String(),
		"dst_ip", r.TargetIP,
		"dst_mac", r.TargetHardwareAddr.String(),
	)
}

func (o *logObserver) SendFailed(r *Reply, err error) {
	o.l.Warn("sending reply failed",
		"ip", r.SenderIP,
		"dst_ip", r.TargetIP,
		"dst_mac", r.TargetHardwareAddr.String(),
		"err", err,
	)
}

func (o *logObserver) Fatal(err error) {
	o.l.Error("responder stopped", "err", err)
}
