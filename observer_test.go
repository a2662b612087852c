package proxyarp

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"testing"
)

func TestDiscardReasonString(t *testing.T) {
	var tests = []struct {
		r    DiscardReason
		want string
	}{
		{r: DiscardTooShort, want: "too short"},
		{r: DiscardNotARP, want: "not ARP"},
		{r: DiscardUnsupportedAddressFamily, want: "unsupported address family"},
		{r: DiscardNotRequest, want: "not a request"},
		{r: DiscardNoMatch, want: "no matching host"},
		{r: 0, want: "DiscardReason(0)"},
	}

	for _, tt := range tests {
		if want, got := tt.want, tt.r.String(); want != got {
			t.Fatalf("unexpected DiscardReason string: %v != %v", want, got)
		}
	}
}

func TestDiscardReasonFromError(t *testing.T) {
	var tests = []struct {
		err  error
		want DiscardReason
	}{
		{err: ErrTooShort, want: DiscardTooShort},
		{err: fmt.Errorf("frame: %w", ErrTooShort), want: DiscardTooShort},
		{err: ErrUnsupportedAddressFamily, want: DiscardUnsupportedAddressFamily},
		{err: ErrNotARP, want: DiscardNotARP},
		{err: errors.New("unknown"), want: DiscardNotARP},
	}

	for i, tt := range tests {
		if want, got := tt.want, discardReason(tt.err); want != got {
			t.Fatalf("[%02d] unexpected DiscardReason for %v: %v != %v", i, tt.err, want, got)
		}
	}
}

func TestLogObserver(t *testing.T) {
	r := &Request{
		Operation:          OperationRequest,
		SenderHardwareAddr: net.HardwareAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		SenderIP:           netip.MustParseAddr("192.168.1.5"),
		TargetHardwareAddr: net.HardwareAddr{0, 0, 0, 0, 0, 0},
		TargetIP:           netip.MustParseAddr("10.0.0.9"),
	}
	reply := &Reply{
		SenderHardwareAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		SenderIP:           netip.MustParseAddr("192.168.1.2"),
		TargetHardwareAddr: net.HardwareAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		TargetIP:           netip.MustParseAddr("192.168.1.5"),
	}

	var tests = []struct {
		desc  string
		level slog.Level
		emit  func(o Observer)
		want  []string
	}{
		{
			desc:  "undecodable frame",
			level: slog.LevelDebug,
			emit:  func(o Observer) { o.FrameDiscarded(DiscardTooShort, nil) },
			want:  []string{"level=DEBUG", `msg="frame discarded"`, `reason="too short"`},
		},
		{
			desc:  "request for unknown host",
			level: slog.LevelDebug,
			emit:  func(o Observer) { o.FrameDiscarded(DiscardNoMatch, r) },
			want: []string{
				`msg="request ignored"`,
				`reason="no matching host"`,
				"op=request",
				"who_has=10.0.0.9",
				"tell=192.168.1.5",
				"sender_mac=11:22:33:44:55:66",
			},
		},
		{
			desc:  "reply sent",
			level: slog.LevelDebug,
			emit:  func(o Observer) { o.ReplySent(reply) },
			want: []string{
				`msg="reply sent"`,
				"ip=192.168.1.2",
				"mac=aa:bb:cc:dd:ee:ff",
				"dst_ip=192.168.1.5",
				"dst_mac=11:22:33:44:55:66",
			},
		},
		{
			desc:  "reply sent, hidden at info level",
			level: slog.LevelInfo,
			emit:  func(o Observer) { o.ReplySent(reply) },
		},
		{
			desc:  "send failed",
			level: slog.LevelInfo,
			emit:  func(o Observer) { o.SendFailed(reply, errors.New("network is down")) },
			want:  []string{"level=WARN", `msg="sending reply failed"`, `err="network is down"`},
		},
		{
			desc:  "fatal",
			level: slog.LevelWarn,
			emit:  func(o Observer) { o.Fatal(errors.New("no such device")) },
			want:  []string{"level=ERROR", `msg="responder stopped"`, `err="no such device"`},
		},
	}

	for i, tt := range tests {
		var buf bytes.Buffer
		o := NewLogObserver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
			Level: tt.level,
		})))

		tt.emit(o)

		out := buf.String()
		if len(tt.want) == 0 && out != "" {
			t.Fatalf("[%02d] test %q, unexpected output: %q", i, tt.desc, out)
		}
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Fatalf("[%02d] test %q, output %q does not contain %q",
					i, tt.desc, out, w)
			}
		}
	}
}

func TestNewLogObserverNilLogger(t *testing.T) {
	o, ok := NewLogObserver(nil).(*logObserver)
	if !ok {
		t.Fatal("unexpected Observer type")
	}

	if want, got := slog.Default(), o.l; want != got {
		t.Fatalf("unexpected logger: %v != %v", want, got)
	}
}
