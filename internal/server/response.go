package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Response is the uniform JSON envelope every API handler returns.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	statusOK    = "OK"
	statusError = "Error"
)

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, Response{Status: statusOK, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, Response{Status: statusError, Error: msg})
}

// respondValidationError flattens validator violations into one
// human-readable message.
func respondValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		respondError(w, r, http.StatusUnprocessableEntity, "invalid request")
		return
	}

	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", err.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	respondError(w, r, http.StatusUnprocessableEntity, strings.Join(msgs, ", "))
}
