package protocol

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/muurk/avrctl/internal/logging"
)

// ReadMessage reads eISCP frames from the stream until it has one usable
// command, blocking as needed. Frames that carry no usable command are
// skipped, not reported as errors:
//
//   - Bad magic: vendor devices occasionally emit garbage between frames.
//     The 16 bytes are discarded and scanning resumes at the next header
//     boundary, matching receiver firmware tolerance. The connection is
//     never torn down for a bad marker alone.
//   - Empty or too-short payload: a command needs at least 3 characters
//     after stripping the "!1" prefix and trailing control bytes.
//
// A payload length beyond MaxPayloadSize means the stream has desynced
// beyond recovery and is returned as an error, as are read failures and
// stream close.
func ReadMessage(r io.Reader) (*Message, error) {
	buf := make([]byte, HeaderSize)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}

		h := parseHeader(buf)
		if !h.magicOK {
			logging.LogRawBytes("Skipping frame with bad magic", buf)
			continue
		}
		if h.payloadSize > MaxPayloadSize {
			return nil, fmt.Errorf("payload size %d exceeds limit, stream desynced", h.payloadSize)
		}

		payload := make([]byte, h.payloadSize)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}

		msg, ok := ParsePayload(payload)
		if !ok {
			logging.Debug("Dropping frame without usable command",
				zap.Int("payload_size", len(payload)))
			continue
		}
		return msg, nil
	}
}

// ParsePayload decodes a raw frame payload into a command. It returns
// ok=false when the payload carries no usable command (empty frame or
// fewer than 3 characters after stripping); that is an expected drop,
// not an error.
func ParsePayload(payload []byte) (*Message, bool) {
	text := decodeText(payload)

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "!1")
	text = strings.TrimRight(text, "\r\n\x1a\x00")

	if len(text) < 3 {
		return nil, false
	}

	return &Message{Code: text[:3], Value: text[3:]}, true
}

// decodeText decodes payload bytes as UTF-8, falling back to a
// byte-per-rune decoding for firmware that sends non-UTF-8 metadata.
func decodeText(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}

	runes := make([]rune, len(payload))
	for i, b := range payload {
		runes[i] = rune(b)
	}
	return string(runes)
}
