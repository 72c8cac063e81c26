package response

// Error codes carried in ErrorData.Code
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeGone            = "GONE"
	ErrCodePaymentRequired = "PAYMENT_REQUIRED"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// Response is the envelope every endpoint returns
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// Meta carries cursor pagination details
type Meta struct {
	Limit     int    `json:"limit"`
	NextAfter uint64 `json:"next_after"`
	HasMore   bool   `json:"has_more"`
}

func Success(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// Page wraps a cursor-paginated list
func Page(data interface{}, limit int, nextAfter uint64, hasMore bool) *Response {
	return &Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Limit: limit, NextAfter: nextAfter, HasMore: hasMore},
	}
}

func Error(code, message string) *Response {
	return &Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	}
}

// Rejection is an error response that also names the ledger rejection kind
func Rejection(code, kind, message string) *Response {
	r := Error(code, message)
	r.Error.Kind = kind
	return r
}

func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

func Unauthorized(message string) *Response {
	return Error(ErrCodeUnauthorized, message)
}

func NotFound(message string) *Response {
	return Error(ErrCodeNotFound, message)
}

func InternalError(message string) *Response {
	return Error(ErrCodeInternal, message)
}
