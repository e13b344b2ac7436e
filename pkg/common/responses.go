package common

import (
	"encoding/json"
	"net/http"
)

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TriggerResponse is the envelope for the trigger endpoints: the success
// flag is carried in the body and the HTTP status stays 200 either way.
type TriggerResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"error": ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

// RespondTriggerSuccess reports a successful trigger with its result record.
func RespondTriggerSuccess(w http.ResponseWriter, result interface{}) {
	RespondJSON(w, http.StatusOK, TriggerResponse{Success: true, Result: result})
}

// RespondTriggerFailure reports a failed trigger. The HTTP status is 200 by
// design; clients read the success flag.
func RespondTriggerFailure(w http.ResponseWriter, err error) {
	RespondJSON(w, http.StatusOK, TriggerResponse{Success: false, Error: err.Error()})
}

// StandardErrorCodes defines common error codes
var StandardErrorCodes = struct {
	ValidationError string
	NotFound        string
	Unauthorized    string
	InternalError   string
	BadRequest      string
}{
	ValidationError: "VALIDATION_ERROR",
	NotFound:        "NOT_FOUND",
	Unauthorized:    "UNAUTHORIZED",
	InternalError:   "INTERNAL_ERROR",
	BadRequest:      "BAD_REQUEST",
}
