// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/affinity/internal/recommend"
)

// maxIdentifierLength bounds user and product ids.
const maxIdentifierLength = 256

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the json name of the field that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter (e.g. "366" for "lte=366").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *ValidationError) Value() interface{} {
	return e.value
}

func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects the failures of one struct.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var sb strings.Builder
	for i := range ve.errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(ve.errors[i].message)
	}
	return sb.String()
}

// APIError mirrors models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

const codeValidation = "VALIDATION_ERROR"

// ToAPIError converts the failures to a VALIDATION_ERROR body. A single
// failure reports field, tag and value in Details; several are listed under
// Details["fields"].
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.errors) {
	case 0:
		return &APIError{Code: codeValidation, Message: "Validation failed"}
	case 1:
		e := ve.errors[0]
		return &APIError{
			Code:    codeValidation,
			Message: e.message,
			Details: map[string]interface{}{"field": e.field, "tag": e.tag, "value": e.value},
		}
	}

	fields := make([]map[string]interface{}, 0, len(ve.errors))
	for _, e := range ve.errors {
		fields = append(fields, map[string]interface{}{"field": e.field, "tag": e.tag, "message": e.message})
	}
	return &APIError{
		Code:    codeValidation,
		Message: ve.Error(),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator, registering custom tags on
// first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)

		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("identifier", validateIdentifier)
		_ = v.RegisterValidation("interaction_type", validateInteractionType)

		validate = v
	})
	return validate
}

// jsonFieldName reports fields by their json name; untagged fields keep the
// Go name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func validateIdentifier(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" || utf8.RuneCountInString(s) > maxIdentifierLength {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validateInteractionType(fl validator.FieldLevel) bool {
	_, err := recommend.ParseInteractionType(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s. It returns nil when s is valid.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return &RequestValidationError{
			errors: []ValidationError{{field: "request", tag: "struct", message: err.Error()}},
		}
	}

	out := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.errors = append(out.errors, ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: describe(fe),
		})
	}
	return out
}

// describe renders a client-facing message for one failed tag.
func describe(fe validator.FieldError) string {
	name, p := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "identifier":
		return fmt.Sprintf("%s must be a non-blank identifier of at most %d characters", name, maxIdentifierLength)
	case "interaction_type":
		return name + " must be one of VIEW, CART, WISHLIST, REVIEW, PURCHASE"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", name, p, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", name, p, unit)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", name, p)
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}
