package upload

import (
	"net/http"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("UPLOAD")

// Error codes
var (
	CodeBatchNotFound       = ErrRegistry.Register("BATCH_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Upload batch not found")
	CodeResumeNotFound      = ErrRegistry.Register("RESUME_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Resume not found")
	CodeNoFiles             = ErrRegistry.Register("NO_FILES", errx.TypeValidation, http.StatusBadRequest, "No files provided")
	CodeTooManyFiles        = ErrRegistry.Register("TOO_MANY_FILES", errx.TypeValidation, http.StatusBadRequest, "Too many files in one batch")
	CodeFileTooLarge        = ErrRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusBadRequest, "File exceeds the size limit")
	CodeUnsupportedFileType = ErrRegistry.Register("UNSUPPORTED_FILE_TYPE", errx.TypeValidation, http.StatusBadRequest, "Only PDF and DOCX files are supported")
	CodeEmptyFile           = ErrRegistry.Register("EMPTY_FILE", errx.TypeValidation, http.StatusBadRequest, "File is empty")
	CodeAccessDenied        = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Batch belongs to another user")
	CodeStorageFailed       = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store uploaded file")
	CodeDispatchFailed      = ErrRegistry.Register("DISPATCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to queue resume for processing")
)

// Helper functions
func ErrBatchNotFound() *errx.Error {
	return ErrRegistry.New(CodeBatchNotFound)
}

func ErrResumeNotFound() *errx.Error {
	return ErrRegistry.New(CodeResumeNotFound)
}

func ErrNoFiles() *errx.Error {
	return ErrRegistry.New(CodeNoFiles)
}

func ErrTooManyFiles() *errx.Error {
	return ErrRegistry.New(CodeTooManyFiles)
}

func ErrFileTooLarge() *errx.Error {
	return ErrRegistry.New(CodeFileTooLarge)
}

func ErrUnsupportedFileType() *errx.Error {
	return ErrRegistry.New(CodeUnsupportedFileType)
}

func ErrEmptyFile() *errx.Error {
	return ErrRegistry.New(CodeEmptyFile)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}
