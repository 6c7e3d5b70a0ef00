package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Auth fields
	"Email":     "Email",
	"Username":  "Username",
	"Password":  "Password",
	"FirstName": "First name",
	"LastName":  "Last name",

	// Profile fields
	"Headline":   "Headline",
	"About":      "About",
	"Slug":       "Slug",
	"TemplateID": "Template",

	// File fields
	"FileName":  "File name",
	"FileType":  "File type",
	"FileSize":  "File size",
	"FilePath":  "File path",
	"FilePaths": "File paths",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, e.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, e.Param())
	case "profile_handle":
		return fmt.Sprintf("%s may only contain letters, numbers, underscores and dashes", label)
	case "person_name":
		return fmt.Sprintf("%s contains invalid characters", label)
	case "no_emoji":
		return fmt.Sprintf("%s may not contain emoji", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
