package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// RoomNameNotAllowed lists the characters a room name can't contain.
const RoomNameNotAllowed = "#`$^*()-+[]{}/\\'\".,:;"

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._+-]*[a-zA-Z0-9])?@[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	lowercase     = regexp.MustCompile(`[a-z]`)
	uppercase     = regexp.MustCompile(`[A-Z]`)
	number        = regexp.MustCompile(`\d`)
)

func Email(email string) error {
	const maxlength = 64

	if len(email) > maxlength {
		return fmt.Errorf("long_email")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("bad_format")
	}

	return nil
}

func Password(password string) error {
	length := len(password)
	if length < 6 {
		return fmt.Errorf("short_password")
	} else if length > 32 {
		return fmt.Errorf("long_password")
	}

	if !lowercase.MatchString(password) {
		return fmt.Errorf("no_lowercase")
	}
	if !uppercase.MatchString(password) {
		return fmt.Errorf("no_uppercase")
	}
	if !number.MatchString(password) {
		return fmt.Errorf("no_number")
	}
	return nil
}

// Username also rejects the name of the system bot, in any case.
func Username(username string) error {
	length := len(username)
	if length < 3 {
		return fmt.Errorf("short_username")
	} else if length > 32 {
		return fmt.Errorf("long_username")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("bad_format")
	}

	if strings.EqualFold(username, "admin") {
		return fmt.Errorf("reserved_username")
	}
	return nil
}

// RoomName checks an already trimmed room name.
func RoomName(name string) error {
	if name == "" {
		return fmt.Errorf("empty_room_name")
	}
	if len(name) > 64 {
		return fmt.Errorf("long_room_name")
	}
	if strings.ContainsAny(name, RoomNameNotAllowed) {
		return fmt.Errorf("not_allowed_chars")
	}
	return nil
}

// Validator runs struct tag validation, with the rules above available as
// the password, username and roomname tags.
type Validator struct {
	validate *playground.Validate
}

func New() *Validator {
	validate := playground.New(playground.WithRequiredStructEnabled())

	rules := map[string]func(string) error{
		"password": Password,
		"username": Username,
		"roomname": RoomName,
	}
	for tag, rule := range rules {
		// registering only fails on an empty tag or nil func
		_ = validate.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
			return rule(fl.Field().String()) == nil
		})
	}

	return &Validator{validate: validate}
}

// Struct returns the failed tag of every invalid field, keyed by field name.
// A nil map means v is valid.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validateErrs playground.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return nil, err
	}

	fieldErrors := make(map[string]string, len(validateErrs))
	for _, e := range validateErrs {
		fieldErrors[e.Field()] = e.Tag()
	}
	return fieldErrors, nil
}
