package hub

import "testing"

func TestEncode(t *testing.T) {
	frame, err := Encode(RoomUsers, map[string]any{"room": "general"})
	if err != nil {
		t.Fatal(err)
	}
	if string(frame) != "roomUsers\n{\"room\":\"general\"}" {
		t.Errorf("frame = %q", frame)
	}

	if _, err := Encode("", nil); err == nil {
		t.Error("expected error for empty event")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantEvent string
		wantData  string
		wantErr   bool
	}{
		{"event with payload", "chatMessage\n\"hi\"", ChatMessage, `"hi"`, false},
		{"event only", "typing", Typing, "", false},
		{"event with trailing newline", "notTyping\n", NotTyping, "", false},
		{"payload with newlines", "chatMessage\n\"a\nb\"", ChatMessage, "\"a\nb\"", false},
		{"empty frame", "", "", "", true},
		{"missing event", "\n{}", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event, data, err := Decode([]byte(tc.frame))
			if tc.wantErr {
				if err == nil {
					t.Errorf("Decode(%q) expected error", tc.frame)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error %v", tc.frame, err)
			}
			if event != tc.wantEvent || string(data) != tc.wantData {
				t.Errorf("Decode(%q) = %q, %q; want %q, %q", tc.frame, event, data, tc.wantEvent, tc.wantData)
			}
		})
	}
}
