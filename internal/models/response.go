package models

import "net/http"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Errors     interface{} `json:"errors,omitempty"`
}

func NewSuccessResponse(status int, message string, data interface{}) APIResponse {
	return APIResponse{
		StatusCode: status,
		Message:    message,
		Data:       data,
	}
}

func NewErrorResponse(status int, message string) APIResponse {
	return APIResponse{
		StatusCode: status,
		Message:    message,
	}
}

func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
		Errors:     errors,
	}
}
