package channel

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/zjrosen/shortcuts/internal/log"
)

const maxFrameSize = 1 << 20

// readFrames parses a Server-Sent-Events stream and calls emit for every
// complete frame. Comment lines (heartbeats) are skipped. It returns when the
// stream ends or emit returns false.
func readFrames(r io.Reader, emit func(Message) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	var eventType string
	var data strings.Builder

	flush := func() bool {
		if data.Len() == 0 && eventType == "" {
			return true
		}
		typ := eventType
		if typ == "" {
			typ = "message"
		}
		payload := data.String()
		eventType = ""
		data.Reset()

		msg := Message{Type: typ}
		if payload != "" {
			if !json.Valid([]byte(payload)) {
				log.Warn(log.CatChannel, "dropping frame with invalid JSON payload", "type", typ)
				return true
			}
			msg.Payload = json.RawMessage(payload)
		}
		return emit(msg)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if !flush() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
			// heartbeat
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				eventType = value
			case "data":
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(value)
			}
		}
	}
	return scanner.Err()
}
