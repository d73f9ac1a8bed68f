package run

import (
	"net/http"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RUN")

// Error codes
var (
	CodeRunNotFound       = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Screening run not found")
	CodeAccessDenied      = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Screening run belongs to another user")
	CodeInvalidLimit      = ErrRegistry.Register("INVALID_LIMIT", errx.TypeValidation, http.StatusBadRequest, "Limit must be between 1 and 200")
	CodeInvalidMinScore   = ErrRegistry.Register("INVALID_MIN_SCORE", errx.TypeValidation, http.StatusBadRequest, "Minimum score must be between 0 and 1")
	CodeDimensionMismatch = ErrRegistry.Register("DIMENSION_MISMATCH", errx.TypeInternal, http.StatusInternalServerError, "Embedding dimension does not match the index")
)

// Helper functions
func ErrRunNotFound() *errx.Error {
	return ErrRegistry.New(CodeRunNotFound)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

func ErrInvalidLimit() *errx.Error {
	return ErrRegistry.New(CodeInvalidLimit)
}

func ErrInvalidMinScore() *errx.Error {
	return ErrRegistry.New(CodeInvalidMinScore)
}
