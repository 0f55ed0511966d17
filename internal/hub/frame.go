package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode builds a frame: the event name, a newline, then the JSON payload.
// A nil payload produces just the event line.
func Encode(event string, payload any) ([]byte, error) {
	if event == "" {
		return nil, fmt.Errorf("event name can't be empty")
	}

	var buf bytes.Buffer
	buf.WriteString(event)
	buf.WriteByte('\n')

	if payload == nil {
		return buf.Bytes(), nil
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	buf.Write(jsonBytes)

	return buf.Bytes(), nil
}

// Decode splits a frame into event name and raw JSON payload, which is empty
// when the frame has none.
func Decode(frame []byte) (string, []byte, error) {
	event, data, _ := bytes.Cut(frame, []byte{'\n'})
	event = bytes.TrimSpace(event)
	if len(event) == 0 {
		return "", nil, fmt.Errorf("frame has no event name")
	}
	return string(event), bytes.TrimSpace(data), nil
}
