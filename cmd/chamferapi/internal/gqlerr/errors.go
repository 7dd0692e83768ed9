// Package gqlerr defines the closed set of client-facing GraphQL errors.
//
// Resolvers return *Error values directly; graphql-go copies Extensions() into
// the response so clients can switch on extensions.code.
package gqlerr

import (
	"errors"
	"log"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// Code classifies an Error for clients.
type Code string

const (
	CodeInvalid          Code = "INVALID"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeDuplicated       Code = "DUPLICATED"
	CodeInvalidPassword  Code = "INVALID_PASSWORD"
	CodeInternalError    Code = "INTERNAL_ERROR"
)

var defaultMessages = map[Code]string{
	CodeInvalid:          "invalid request",
	CodePermissionDenied: "not enough permission",
	CodeForbidden:        "behavior not allowed",
	CodeNotFound:         "not found",
	CodeDuplicated:       "duplicated",
	CodeInvalidPassword:  "invalid password",
	CodeInternalError:    "internal server error",
}

// DuplicateProperty names one field whose value is already taken.
type DuplicateProperty struct {
	Target string `json:"target"`
	Value  string `json:"value"`
}

// Error is a client-facing error carrying a Code.
type Error struct {
	Code       Code
	Message    string
	Properties []DuplicateProperty // DUPLICATED only
	Fields     map[string]string   // INVALID only, per-field validation messages
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions is read by graphql-go when building the response error.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": string(e.Code)}
	if len(e.Properties) > 0 {
		props := make([]map[string]string, 0, len(e.Properties))
		for _, p := range e.Properties {
			props = append(props, map[string]string{"target": p.Target, "value": p.Value})
		}
		ext["properties"] = props
	}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

// New builds an Error with code and message; an empty message uses the default for code.
func New(code Code, message string) *Error {
	if message == "" {
		message = defaultMessages[code]
	}
	return &Error{Code: code, Message: message}
}

func Invalid(message ...string) *Error          { return New(CodeInvalid, first(message)) }
func PermissionDenied(message ...string) *Error { return New(CodePermissionDenied, first(message)) }
func Forbidden(message ...string) *Error        { return New(CodeForbidden, first(message)) }
func NotFound(message ...string) *Error         { return New(CodeNotFound, first(message)) }
func InvalidPassword(message ...string) *Error  { return New(CodeInvalidPassword, first(message)) }
func Internal(message ...string) *Error         { return New(CodeInternalError, first(message)) }

// Duplicated reports unique-field collisions.
func Duplicated(props ...DuplicateProperty) *Error {
	e := New(CodeDuplicated, "")
	e.Properties = props
	return e
}

// Is reports whether err is an Error with code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Mask converts any error into an *Error fit for clients. Errors that do not
// map to a known class are logged and replaced by INTERNAL_ERROR.
func Mask(err error) error {
	if err == nil {
		return nil
	}

	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		props := make([]DuplicateProperty, 0, len(dup.Collisions))
		for _, c := range dup.Collisions {
			props = append(props, DuplicateProperty{Target: c.Target, Value: c.Value})
		}
		return Duplicated(props...)
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		e := Invalid()
		e.Fields = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			if ferr != nil {
				e.Fields[field] = ferr.Error()
			}
		}
		return e
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NotFound()
	case errors.Is(err, repository.ErrInvalidSearch):
		return Invalid(err.Error())
	}

	log.Printf("ERROR: %v", err)
	return Internal()
}

func first(message []string) string {
	if len(message) == 0 {
		return ""
	}
	return message[0]
}
