package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":      "{field} is required",
	"required_if":   "{field} is required when {param}",
	"required_with": "{field} is required together with {param}",
	"gte":           "{field} must be greater than or equal to {param}",
	"lte":           "{field} must be less than or equal to {param}",
	"min":           "{field} must be at least {param}",
	"max":           "{field} must be at most {param}",
	"oneof":         "{field} must be one of {param}",
	"nefield":       "{field} must differ from {param}",
	"email":         "{field} must be a valid email address",
	"uuid":          "{field} must be a valid UUID",
	"clock12h":      "{field} must be a 12-hour time such as 9:30 AM",
	"isodate":       "{field} must be a date in YYYY-MM-DD format",
	"mimetypes":     "{field} must be one of {param}",
	"maxfilesize":   "{field} must not exceed {param} MB",
}

// message describes the first failed rule in plain words. Rules without a
// template fall back to the validator's own text.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		template, ok := messages[valErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", valErr.Field(), "{param}", valErr.Param()).Replace(template)
	}

	return valErrors.Error()
}
