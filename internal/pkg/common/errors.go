package common

import (
	"errors"
	"net/http"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an API error code and HTTP status alongside the cause.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies of a predefined error still compare equal.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying err as its cause.
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// Detail is the message shown to clients: the upstream cause when present.
func (e *CustomError) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// NewError creates a CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError unwraps err to a *CustomError, if there is one in the chain.
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeLabelDetection   = "LABEL_DETECTION_FAILED"
	ErrCodeBodyTooLarge     = "REQUEST_TOO_LARGE"
)

var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest, nil)
	ErrMissingInput    = NewError(ErrCodeInvalidRequest, "Either imageBase64 or ingredients is required", http.StatusBadRequest, nil)
	ErrNoIngredients   = NewError(ErrCodeInvalidInput, "No valid ingredients detected", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "Request timeout", http.StatusGatewayTimeout, nil)
	ErrBodyTooLarge    = NewError(ErrCodeBodyTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)

	ErrGenerationFailed = NewError(ErrCodeGenerationFailed, "Recipe generation failed", http.StatusInternalServerError, nil)
	ErrLabelDetection   = NewError(ErrCodeLabelDetection, "Failed to analyze image", http.StatusBadGateway, nil)

	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "Invalid image format", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "Image exceeds the size limit", http.StatusBadRequest, nil)
	ErrInvalidImageType   = NewError("INVALID_IMAGE_TYPE", "Unsupported image type", http.StatusBadRequest, nil)
)
