package client

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// STOMP 1.2 frame commands used by the push channel.
const (
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdDisconnect  = "DISCONNECT"
	CmdMessage     = "MESSAGE"
	CmdReceipt     = "RECEIPT"
	CmdError       = "ERROR"
	CmdSend        = "SEND"
)

var errFrameSyntax = errors.New("stomp: malformed frame")

// Header is a single frame header.
type Header struct {
	Key   string
	Value string
}

// Frame is one STOMP frame carried in a single WebSocket text message.
type Frame struct {
	Command string
	Headers []Header
	Body    []byte
}

// NewFrame builds a frame from alternating key/value header strings.
func NewFrame(command string, kv ...string) Frame {
	f := Frame{Command: command}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Headers = append(f.Headers, Header{Key: kv[i], Value: kv[i+1]})
	}
	return f
}

// Get returns the first value for key. Repeated headers keep the first
// occurrence, as STOMP 1.2 requires.
func (f Frame) Get(key string) string {
	for _, h := range f.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return ""
}

// IsHeartbeat reports whether f is an empty keep-alive line.
func (f Frame) IsHeartbeat() bool {
	return f.Command == ""
}

// Encode serialises f, terminated by NUL.
func (f Frame) Encode() []byte {
	var b bytes.Buffer
	b.WriteString(f.Command)
	b.WriteByte('\n')
	escape := f.Command != CmdConnect && f.Command != CmdConnected
	for _, h := range f.Headers {
		if escape {
			b.WriteString(escapeHeader(h.Key))
			b.WriteByte(':')
			b.WriteString(escapeHeader(h.Value))
		} else {
			b.WriteString(h.Key)
			b.WriteByte(':')
			b.WriteString(h.Value)
		}
		b.WriteByte('\n')
	}
	if len(f.Body) > 0 && f.Get("content-length") == "" {
		fmt.Fprintf(&b, "content-length:%d\n", len(f.Body))
	}
	b.WriteByte('\n')
	b.Write(f.Body)
	b.WriteByte(0)
	return b.Bytes()
}

// DecodeFrame parses a single frame. A message holding only end-of-line
// bytes is a heartbeat and yields a zero Frame.
func DecodeFrame(data []byte) (Frame, error) {
	data = bytes.TrimLeft(data, "\r\n")
	if len(data) == 0 {
		return Frame{}, nil
	}

	cmdEnd := bytes.IndexByte(data, '\n')
	if cmdEnd < 0 {
		return Frame{}, errFrameSyntax
	}
	f := Frame{Command: strings.TrimSuffix(string(data[:cmdEnd]), "\r")}
	rest := data[cmdEnd+1:]
	unescape := f.Command != CmdConnect && f.Command != CmdConnected

	for {
		lineEnd := bytes.IndexByte(rest, '\n')
		if lineEnd < 0 {
			return Frame{}, errFrameSyntax
		}
		line := strings.TrimSuffix(string(rest[:lineEnd]), "\r")
		rest = rest[lineEnd+1:]
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Frame{}, fmt.Errorf("%w: header %q", errFrameSyntax, line)
		}
		if unescape {
			key, value = unescapeHeader(key), unescapeHeader(value)
		}
		f.Headers = append(f.Headers, Header{Key: key, Value: value})
	}

	if cl := f.Get("content-length"); cl != "" {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 || n > len(rest) {
			return Frame{}, fmt.Errorf("%w: content-length %q", errFrameSyntax, cl)
		}
		f.Body = rest[:n]
		return f, nil
	}

	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return Frame{}, fmt.Errorf("%w: missing NUL terminator", errFrameSyntax)
	}
	f.Body = rest[:end]
	return f, nil
}

var (
	headerEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`, ":", `\c`)
	headerUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n", `\c`, ":")
)

func escapeHeader(s string) string   { return headerEscaper.Replace(s) }
func unescapeHeader(s string) string { return headerUnescaper.Replace(s) }
