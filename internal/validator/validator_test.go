package validator_test

import (
	"chatrooms-backend/internal/validator"
	"strings"
	"testing"
)

type ruleCase struct {
	input string
	want  string
}

// check runs rule over every case, want is the error code or empty for valid.
func check(t *testing.T, rule func(string) error, cases []ruleCase) {
	t.Helper()

	for _, tc := range cases {
		err := rule(tc.input)
		if tc.want == "" {
			if err != nil {
				t.Errorf("%q failed unexpectedly: %v", tc.input, err)
			}
			continue
		}
		if err == nil || err.Error() != tc.want {
			t.Errorf("%q got %v, want %q", tc.input, err, tc.want)
		}
	}
}

func TestEmail(t *testing.T) {
	check(t, validator.Email, []ruleCase{
		{"alice@example.com", ""},
		{"bob+chat@rooms.co.uk", ""},
		{"carol.ann_b@mail.test", ""},
		{strings.Repeat("a", 52) + "@example.com", ""},
		{strings.Repeat("a", 53) + "@example.com", "long_email"},
		{"alice", "bad_format"},
		{"alice@", "bad_format"},
		{"@example.com", "bad_format"},
		{"alice@localhost", "bad_format"},
		{"alice @example.com", "bad_format"},
		{"alice@example.c", "bad_format"},
	})
}

func TestPassword(t *testing.T) {
	check(t, validator.Password, []ruleCase{
		{"Chat42", ""},
		{"Changed2", ""},
		{"Aa1" + strings.Repeat("x", 29), ""},
		{"Aa1x", "short_password"},
		{"Aa1" + strings.Repeat("x", 30), "long_password"},
		{"CHATROOM42", "no_lowercase"},
		{"chatroom42", "no_uppercase"},
		{"ChatRooms", "no_number"},
	})
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"Valid: letters", "alice", ""},
		{"Valid: digits and underscore", "bob_42", ""},
		{"Error: too short", "al", "short_username"},
		{"Error: too long", "a234567890123456789012345678901234", "long_username"},
		{"Error: space", "al ice", "bad_format"},
		{"Error: admin", "admin", "reserved_username"},
		{"Error: admin in another case", "AdMiN", "reserved_username"},
		{"Valid: admin as a prefix", "admin2", ""},
		{"Valid: longest", strings.Repeat("u", 32), ""},
		{"Error: hyphen", "al-ice", "bad_format"},
		{"Error: non ascii", "alicé", "bad_format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Username(tc.username)
			if tc.want == "" {
				if err != nil {
					t.Errorf("Username(%q) failed unexpectedly: %v", tc.username, err)
				}
				return
			}
			if err == nil || err.Error() != tc.want {
				t.Errorf("Username(%q) got %v, want %q", tc.username, err, tc.want)
			}
		})
	}
}

func TestRoomName(t *testing.T) {
	tests := []struct {
		name string
		room string
		want string
	}{
		{"Valid: plain", "General", ""},
		{"Valid: spaces and digits", "Room 101", ""},
		{"Error: empty", "", "empty_room_name"},
		{"Error: hash", "#general", "not_allowed_chars"},
		{"Error: dot", "v1.0", "not_allowed_chars"},
		{"Error: slash", "a/b", "not_allowed_chars"},
		{"Error: backslash", `a\b`, "not_allowed_chars"},
		{"Error: quote", `say "hi"`, "not_allowed_chars"},
		{"Error: hyphen", "off-topic", "not_allowed_chars"},
		{"Valid: longest", strings.Repeat("r", 64), ""},
		{"Error: too long", strings.Repeat("r", 65), "long_room_name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.RoomName(tc.room)
			if tc.want == "" {
				if err != nil {
					t.Errorf("RoomName(%q) failed unexpectedly: %v", tc.room, err)
				}
				return
			}
			if err == nil || err.Error() != tc.want {
				t.Errorf("RoomName(%q) got %v, want %q", tc.room, err, tc.want)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,email"`
		UserName string `validate:"username"`
		Password string `validate:"password"`
	}

	v := validator.New()

	fieldErrors, err := v.Struct(signup{Email: "alice@example.com", UserName: "alice", Password: "Secret1"})
	if err != nil || fieldErrors != nil {
		t.Fatalf("valid signup rejected: %v %v", fieldErrors, err)
	}

	fieldErrors, err = v.Struct(signup{Email: "nope", UserName: "admin", Password: "short"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"Email": "email", "UserName": "username", "Password": "password"}
	for field, tag := range want {
		if fieldErrors[field] != tag {
			t.Errorf("field %s: got %q, want %q", field, fieldErrors[field], tag)
		}
	}
}

func TestRoomNameRejectsEveryListedChar(t *testing.T) {
	for _, c := range validator.RoomNameNotAllowed {
		name := "room" + string(c)
		if err := validator.RoomName(name); err == nil || err.Error() != "not_allowed_chars" {
			t.Errorf("RoomName(%q) got %v, want not_allowed_chars", name, err)
		}
	}
}

func TestStructRoomName(t *testing.T) {
	type room struct {
		Name string `validate:"roomname"`
	}

	v := validator.New()

	fieldErrors, err := v.Struct(room{Name: "General"})
	if err != nil || fieldErrors != nil {
		t.Fatalf("valid room rejected: %v %v", fieldErrors, err)
	}

	fieldErrors, err = v.Struct(room{Name: "a;b"})
	if err != nil {
		t.Fatal(err)
	}
	if fieldErrors["Name"] != "roomname" {
		t.Errorf("got %v, want Name: roomname", fieldErrors)
	}
}
