package form

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var datasetSizePattern = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s*(GB|MB|TB)$`)

// formValidate is shared by all controllers; validator.Validate is safe for
// concurrent use once configured.
var formValidate *validator.Validate

func init() {
	formValidate = validator.New()

	if err := formValidate.RegisterValidation("notblank", validateNotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validator: %v", err))
	}
	if err := formValidate.RegisterValidation("datasetsize", validateDatasetSize); err != nil {
		panic(fmt.Sprintf("failed to register datasetsize validator: %v", err))
	}

	formValidate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateDatasetSize(fl validator.FieldLevel) bool {
	return datasetSizePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ValidationErrors maps a form field (JSON name) to a user facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var messages = map[string]string{
	"title":               "Title is required",
	"description":         "Description is required",
	"species":             "Species is required",
	"strain":              "Strain is required",
	"acceleratingVoltage": "Accelerating voltage must be between 100-400 kV",
	"magnification":       "Magnification must be between 1,000-100,000x",
	"pixelSize":           "Pixel size must be between 0.1-10 nm",
	"binning":             "Binning must be between 1-8",
	"fileTypes":           "At least one file type must be selected",
}

// Validate checks the form and returns nil or ValidationErrors.
func Validate(s State) error {
	err := formValidate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	out := ValidationErrors{}
	for _, fe := range fieldErrors {
		out[fe.Field()] = message(fe, s)
	}
	return out
}

func message(fe validator.FieldError, s State) string {
	if fe.Field() == "datasetSize" {
		if strings.TrimSpace(s.DatasetSize) == "" {
			return "Dataset size is required"
		}
		return `Dataset size must be in format like "2.3 GB"`
	}
	if msg, ok := messages[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
