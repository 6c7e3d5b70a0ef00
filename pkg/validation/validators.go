package validation

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Public handles and slugs: word characters and dashes, like upstream
	// profile identifiers.
	handleRegex = regexp.MustCompile(`^[\w\-]+$`)

	// Allow letters, spaces, and common name punctuation: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("profile_handle", ProfileHandle)
	_ = v.RegisterValidation("person_name", PersonName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// ProfileHandle validates usernames and publishing slugs
func ProfileHandle(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return handleRegex.MatchString(val)
}

// PersonName validates that a string contains only valid name characters
// Rejects digits and most special symbols
func PersonName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
