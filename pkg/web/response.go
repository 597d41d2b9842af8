// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns the human readable suffix for a failed validation rule.
// It is meant to be prefixed with the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "currency":
		return " is not supported"
	case "amount":
		return " must be a positive decimal below 1e16 with at most 4 fractional digits"
	case "uuid":
		return " must be a valid UUID"
	case "nefield":
		return " must differ from " + fe.Param()
	}

	return " is invalid"
}
