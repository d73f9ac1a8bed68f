package errx

import "fmt"

// Type classifies an error for transport-level handling.
type Type string

const (
	TypeValidation     Type = "VALIDATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeBusiness       Type = "BUSINESS"
	TypeUnavailable    Type = "UNAVAILABLE"
	TypeExternal       Type = "EXTERNAL"
	TypeInternal       Type = "INTERNAL"
)

func defaultStatus(t Type) int {
	switch t {
	case TypeValidation:
		return 400
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeAuthentication:
		return 401
	case TypeAuthorization:
		return 403
	case TypeBusiness:
		return 422
	case TypeUnavailable:
		return 503
	case TypeExternal:
		return 502
	default:
		return 500
	}
}

// Wrap creates an ad-hoc error around err when no registered code applies.
func Wrap(err error, message string, t Type) *Error {
	return &Error{
		Code:       string(t),
		Type:       t,
		Message:    message,
		HTTPStatus: defaultStatus(t),
		cause:      err,
	}
}

// Code identifies a registered error kind within a registry.
type Code struct {
	registry   string
	code       string
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error codes of one domain, namespaced by prefix.
type Registry struct {
	prefix string
}

// NewRegistry creates an error registry for a domain prefix (e.g. "UPLOAD").
func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix}
}

// Register declares an error code with its type, HTTP status and default message.
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	return Code{
		registry:   r.prefix,
		code:       code,
		errType:    t,
		httpStatus: httpStatus,
		message:    message,
	}
}

// New creates an error for a registered code.
func (r *Registry) New(c Code) *Error {
	return &Error{
		Code:       c.registry + "." + c.code,
		Type:       c.errType,
		Message:    c.message,
		HTTPStatus: c.httpStatus,
	}
}

// NewWithCause creates an error for a registered code wrapping an underlying cause.
func (r *Registry) NewWithCause(c Code, cause error) *Error {
	e := r.New(c)
	e.cause = cause
	return e
}

// Error is a structured application error with a stable code and HTTP mapping.
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// WithMessage overrides the registered default message.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithDetail attaches a single key/value detail.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// WithDetails merges a detail map.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Is matches two registry errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsCode reports whether err is a registry error with the given code.
func IsCode(err error, c Code) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Code == c.registry+"."+c.code
}

// ToHTTPResponse renders the error as a JSON-serializable body.
func (e *Error) ToHTTPResponse() map[string]any {
	body := map[string]any{
		"error":   e.Message,
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return body
}
