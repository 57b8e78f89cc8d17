package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	result := Encode(Message{From: 9000, Content: "hello"})
	expected := []byte(`{"from":"9000","content":"hello"}` + "\n")
	if !bytes.Equal(result, expected) {
		t.Errorf("Expected %s got %s", expected, result)
	}
}

func TestEncodeIsASingleLine(t *testing.T) {
	frame := Encode(Message{From: 1, Content: "a\nb\r\nc"})
	assert.Equal(t, 1, bytes.Count(frame, []byte{Terminator}))
	assert.Equal(t, byte(Terminator), frame[len(frame)-1])
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	frame := Encode(Message{From: 1, Content: "<b>&</b>"})
	assert.Contains(t, string(frame), "<b>&</b>")
}

func TestDecodeMessage(t *testing.T) {
	msg, err := Decode([]byte(`{"from":"9001","content":"hi there"}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, Message{From: 9001, Content: "hi there"}, msg)
}

func TestDecodeIgnoresFieldOrder(t *testing.T) {
	msg, err := Decode([]byte(`{"content":"x","from":"7"}`))
	require.NoError(t, err)
	assert.Equal(t, Message{From: 7, Content: "x"}, msg)
}

func TestDecodeNumericSender(t *testing.T) {
	msg, err := Decode([]byte(`{"from":9000,"content":"hello"}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, Message{From: 9000, Content: "hello"}, msg)
}

func TestDecodeCarriageReturn(t *testing.T) {
	msg, err := Decode([]byte(`{"from":"1","content":"x"}` + "\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "x", msg.Content)
}

func TestDecodeEmptyContent(t *testing.T) {
	msg, err := Decode([]byte(`{"from":"1","content":""}`))
	require.NoError(t, err)
	assert.Equal(t, Message{From: 1}, msg)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"plain text":      "hello there",
		"empty":           "",
		"missing from":    `{"content":"hello"}`,
		"missing content": `{"from":"9000"}`,
		"null":            "null",
		"array":           `["9000","hello"]`,
		"bad sender":      `{"from":"nine","content":"hello"}`,
		"float sender":    `{"from":90.5,"content":"hello"}`,
		"content number":  `{"from":"9000","content":5}`,
		"trailing junk":   `{"from":"9000","content":"hello"} extra`,
	}
	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(frame + "\n"))
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %v", err)
			assert.Equal(t, frame, decodeErr.Frame)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	messages := []Message{
		{From: 9000, Content: "hello"},
		{From: 0, Content: ""},
		{From: 65535, Content: "unicode: héllo wörld ✓"},
		{From: 1234, Content: `quotes " and \ backslashes`},
		{From: 42, Content: "tabs\tand\u0000nulls"},
		// JSON escapes the terminator, so even this survives framing
		{From: 9001, Content: "two\nlines"},
	}
	for _, msg := range messages {
		result, err := Decode(Encode(msg))
		if err != nil {
			t.Fatalf("Decoding failed: %v", err)
		}
		if result != msg {
			t.Errorf("Expected %v got %v", msg, result)
		}
	}
}

// Content is expected to be text, invalid bytes come back as U+FFFD
func TestRoundTripInvalidUTF8(t *testing.T) {
	msg := Message{From: 9000, Content: "a\xffb\xc3"}
	expected := Message{From: 9000, Content: "a\uFFFDb\uFFFD"}
	result, err := Decode(Encode(msg))
	if err != nil {
		t.Fatalf("Decoding failed: %v", err)
	}
	if result != expected {
		t.Errorf("Expected %v got %v", expected, result)
	}
}

func TestPrintReceiver(t *testing.T) {
	var out bytes.Buffer
	r := PrintReceiver{Out: &out}
	r.ReceiveMessage(9000, "hello")
	r.ReceiveMalformed("junk")
	assert.Equal(t, "9000: hello\nmalformed message: \"junk\"\n", out.String())
}
