package client

import (
	"strings"
	"testing"
)

func TestFrameEncode(t *testing.T) {
	f := NewFrame(CmdSubscribe, "id", "sub-0", "destination", "/topic/messages")
	got := string(f.Encode())
	want := "SUBSCRIBE\nid:sub-0\ndestination:/topic/messages\n\n\x00"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestFrameEncodeBodyAddsContentLength(t *testing.T) {
	f := NewFrame(CmdSend, "destination", "/app/x")
	f.Body = []byte(`{"a":1}`)
	got := string(f.Encode())
	if !strings.Contains(got, "content-length:7\n") {
		t.Errorf("expected content-length header, got %q", got)
	}
	if !strings.HasSuffix(got, "\n\n{\"a\":1}\x00") {
		t.Errorf("unexpected body framing: %q", got)
	}
}

func TestDecodeFrameMessage(t *testing.T) {
	raw := "MESSAGE\ndestination:/topic/messages\nsubscription:sub-0\nmessage-id:1\n\n{\"content\":\"Low stock: Item A\"}\x00"
	f, err := DecodeFrame([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if f.Command != CmdMessage {
		t.Errorf("Command = %q", f.Command)
	}
	if f.Get("subscription") != "sub-0" {
		t.Errorf("subscription = %q", f.Get("subscription"))
	}
	if string(f.Body) != `{"content":"Low stock: Item A"}` {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestDecodeFrameContentLengthAllowsNUL(t *testing.T) {
	raw := "MESSAGE\ncontent-length:3\n\na\x00b\x00"
	f, err := DecodeFrame([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Body) != "a\x00b" {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestDecodeFrameHeartbeat(t *testing.T) {
	for _, raw := range []string{"\n", "\r\n", ""} {
		f, err := DecodeFrame([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeFrame(%q): %v", raw, err)
		}
		if !f.IsHeartbeat() {
			t.Errorf("DecodeFrame(%q) should be a heartbeat", raw)
		}
	}
}

func TestDecodeFrameRepeatedHeaderKeepsFirst(t *testing.T) {
	f, err := DecodeFrame([]byte("MESSAGE\nfoo:1\nfoo:2\n\n\x00"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Get("foo") != "1" {
		t.Errorf("foo = %q, want 1", f.Get("foo"))
	}
}

func TestHeaderEscapingRoundTrip(t *testing.T) {
	f := NewFrame(CmdMessage, "note", "a:b\nc\\d")
	got, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got.Get("note") != "a:b\nc\\d" {
		t.Errorf("note = %q", got.Get("note"))
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := map[string]string{
		"no newline":       "MESSAGE",
		"unterminated":     "MESSAGE\nfoo:bar\n\nbody",
		"bad header":       "MESSAGE\nnocolon\n\n\x00",
		"bad length":       "MESSAGE\ncontent-length:99\n\nshort\x00",
		"headers no blank": "MESSAGE\nfoo:bar",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeFrame([]byte(raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
