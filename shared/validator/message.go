package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const messageSeparator = "; "

var (
	messages = map[string]string{
		"required": "{field} is required",
		"empty":    "{field} must not be set",
		"gt":       "{field} must be greater than {param}",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param} characters",
		"min":      "{field} must be at least {param} characters",
		"date":     "{field} must be a date formatted as YYYY-MM-DD",
		"gtfield":  "{field} must be after {param}",
		"uuid":     "{field} must be a valid UUID",
		"iso4217":  "{field} must be an ISO-4217 currency code",
	}
)

// message renders every field violation, in struct order.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(valErrors))

	for _, valErr := range valErrors {
		template, ok := messages[valErr.Tag()]
		if !ok {
			parts = append(parts, valErr.Error())

			continue
		}

		rendered := strings.ReplaceAll(template, "{field}", valErr.Field())
		rendered = strings.ReplaceAll(rendered, "{param}", valErr.Param())

		parts = append(parts, rendered)
	}

	return strings.Join(parts, messageSeparator)
}
