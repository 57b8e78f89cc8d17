package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Terminator ends every frame on the wire
const Terminator = '\n'

// Message represents a text message sent from one node to its peers
type Message struct {
	// From is the listening port of the node that sent this message
	From int
	// Content is the actual text content of the message
	Content string
}

// wireMessage is the shape of a frame on the wire.
//
// Pointers let us tell a missing field apart from an empty one.
type wireMessage struct {
	From    *json.RawMessage `json:"from"`
	Content *string          `json:"content"`
}

// DecodeError is returned when a frame isn't a well formed message.
//
// This never indicates a problem with the connection itself, the peer
// sending it is otherwise healthy.
type DecodeError struct {
	// Frame is the raw frame, without its terminator
	Frame string
	// Reason describes what was wrong with the frame
	Reason string
	// Err is the underlying parsing error, if any
	Err error
}

func (err *DecodeError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("malformed frame %q: %s: %v", err.Frame, err.Reason, err.Err)
	}
	return fmt.Sprintf("malformed frame %q: %s", err.Frame, err.Reason)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// Encode serializes a Message into a single frame, terminator included.
//
// The sender is written as text. JSON escapes control characters inside
// strings, so a newline in Content never ends up raw inside the frame.
func Encode(msg Message) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	wire := struct {
		From    string `json:"from"`
		Content string `json:"content"`
	}{strconv.Itoa(msg.From), msg.Content}
	// a struct of two strings always encodes
	_ = enc.Encode(wire)
	return buf.Bytes()
}

// TrimFrame removes the terminator, and a carriage return before it
func TrimFrame(frame []byte) []byte {
	frame = bytes.TrimSuffix(frame, []byte{Terminator})
	return bytes.TrimSuffix(frame, []byte{'\r'})
}

// Decode parses a single frame into a Message.
// It does the opposite of Encode.
// The terminator is optional, and a trailing "\r\n" is also accepted.
// The sender may be either a numeric string, or a plain JSON number.
func Decode(frame []byte) (Message, error) {
	frame = TrimFrame(frame)
	var wire wireMessage
	if err := json.Unmarshal(frame, &wire); err != nil {
		return Message{}, &DecodeError{Frame: string(frame), Reason: "not a structured record", Err: err}
	}
	if wire.From == nil {
		return Message{}, &DecodeError{Frame: string(frame), Reason: "missing from field"}
	}
	if wire.Content == nil {
		return Message{}, &DecodeError{Frame: string(frame), Reason: "missing content field"}
	}
	from, err := parseFrom(*wire.From)
	if err != nil {
		return Message{}, &DecodeError{Frame: string(frame), Reason: "bad from field", Err: err}
	}
	return Message{From: from, Content: *wire.Content}, nil
}

func parseFrom(raw json.RawMessage) (int, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strconv.Atoi(text)
	}
	var number int
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, err
	}
	return number, nil
}
