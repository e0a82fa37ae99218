package errx

// HTTPErrorResponse represents a standard HTTP error response body
type HTTPErrorResponse struct {
	Code      string         `json:"code"`
	Error     string         `json:"error"`
	Type      string         `json:"type"`
	Status    int            `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse(requestID string) HTTPErrorResponse {
	resp := HTTPErrorResponse{
		Code:      e.Code,
		Error:     e.Message,
		Type:      string(e.Type),
		Status:    e.HTTPStatus,
		RequestID: requestID,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	return resp
}

// StatusOf returns the HTTP status suggested by err, 500 for foreign errors.
func StatusOf(err error) int {
	var e *Error
	if As(err, &e) && e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return 500
}
