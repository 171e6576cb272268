package response

// Response is the envelope every API endpoint returns. Code carries a
// machine-readable reason (VALIDATION_ERROR, NOT_FOUND, CONFLICT,
// CODEC_FAILURE, MALFORMED_TOKEN, INTERNAL) so clients can branch without
// parsing the human-readable error message.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Code       string      `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps data in a success envelope.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps an error message and reason code in an error envelope.
func Error(statusCode int, code, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Code:       code,
		Error:      err,
	}
}
