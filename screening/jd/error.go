package jd

import (
	"net/http"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("JD")

// Error codes
var (
	CodeNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job description not found")
	CodeAccessDenied = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Job description belongs to another user")
	CodeEmptyTitle   = ErrRegistry.Register("EMPTY_TITLE", errx.TypeValidation, http.StatusBadRequest, "Title is required")
	CodeEmptyText    = ErrRegistry.Register("EMPTY_TEXT", errx.TypeValidation, http.StatusBadRequest, "Job description text is required")
)

// Helper functions
func ErrNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotFound)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

func ErrEmptyTitle() *errx.Error {
	return ErrRegistry.New(CodeEmptyTitle)
}

func ErrEmptyText() *errx.Error {
	return ErrRegistry.New(CodeEmptyText)
}
