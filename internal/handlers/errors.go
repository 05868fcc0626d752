package handlers

import "errors"

const (
	msgNoFile     = "No file uploaded"
	msgNotImage   = "Uploaded file is not an image"
	msgTooLarge   = "Uploaded file is too large"
	msgPredictErr = "An error occurred during prediction"
)

// ValidationError is a client mistake reported with 400 and no details.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	errNoFile   = &ValidationError{Message: msgNoFile}
	errNotImage = &ValidationError{Message: msgNotImage}
)

func isValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
