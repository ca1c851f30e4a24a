package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("absoluteurl", validateAbsoluteURL); err != nil {
		panic(fmt.Sprintf("failed to register absoluteurl validation: %v", err))
	}
	if err := validate.RegisterValidation("shortcode", validateShortCode); err != nil {
		panic(fmt.Sprintf("failed to register shortcode validation: %v", err))
	}
}

// Validate validates a struct using tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateURL validates a URL separately
func ValidateURL(urlStr string) error {
	return validate.Var(urlStr, "required,absoluteurl")
}

// ValidateShortCode validates a custom short code separately
func ValidateShortCode(code string) error {
	return validate.Var(code, "shortcode")
}

// A shortenable URL must be absolute: http or https scheme plus a host.
func validateAbsoluteURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Custom short codes are 4-30 characters of letters, numbers, underscores and hyphens.
func validateShortCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()

	if len(code) < 4 || len(code) > 30 {
		return false
	}

	for _, char := range code {
		if !unicode.IsLetter(char) && !unicode.IsNumber(char) && char != '_' && char != '-' {
			return false
		}
	}

	return true
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// FormatError formats validator errors into human-readable messages
func FormatError(err error) []ValidationError {
	var validationErrors []ValidationError

	if err == nil {
		return validationErrors
	}

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			var message string

			switch e.Tag() {
			case "required":
				message = fmt.Sprintf("%s is required", e.Field())
			case "absoluteurl":
				message = "Invalid URL format. Must be an absolute http or https URL"
			case "shortcode":
				message = "Custom code must be 4-30 characters long and contain only letters, numbers, underscores, or hyphens"
			default:
				message = fmt.Sprintf("Invalid value for %s", e.Field())
			}

			validationErrors = append(validationErrors, ValidationError{
				Field: strings.ToLower(e.Field()),
				Error: message,
			})
		}
	}

	return validationErrors
}
