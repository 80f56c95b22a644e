package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"elc/shared/base64"
	"elc/shared/constant"
	"elc/shared/failure"
	"elc/shared/timeslot"
	"elc/shared/timezone"

	val "github.com/go-playground/validator/v10"
)

const bytesPerMB = 1 << 20

var validate = newValidate()

var customTags = map[string]val.Func{
	"mimetypes":   validateMimetype,
	"maxfilesize": validateFileSize,
	"clock12h":    validateClock,
	"isodate":     validateDay,
}

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	// report fields by their wire names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// validateMimetype accepts an uploaded file header or a base64 data URL whose
// content type is one of the space separated params.
func validateMimetype(field val.FieldLevel) bool {
	var contentType string

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		contentType = value.Header.Get(constant.RequestHeaderContentType)
	case string:
		contentType = base64.GetContentType(value)
	}

	if contentType == "" {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), contentType)
}

// validateFileSize bounds an upload, or an encoded string, to param megabytes.
func validateFileSize(field val.FieldLevel) bool {
	maxMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	var size int64

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		size = value.Size
	case string:
		size = int64(len(value))
	}

	return float64(size) <= maxMB*bytesPerMB
}

func validateClock(field val.FieldLevel) bool {
	_, err := timeslot.ParseClock(field.Field().String())

	return err == nil
}

func validateDay(field val.FieldLevel) bool {
	_, err := timezone.ParseDay(field.Field().String())

	return err == nil
}

// Validate decodes a JSON body into data and validates the result. Decoding
// and validation failures are both reported as bad requests.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return failure.BadRequestFromString("request body is required") //nolint:wrapcheck
		}

		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
