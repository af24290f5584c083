// Package response defines the JSON envelope every bank endpoint writes.
// Success responses carry data, error responses carry a message; clients can
// branch on the status field without inspecting HTTP codes.
package response

import (
	"encoding/json"
	"net/http"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// APIResponse is the wire envelope. Handlers that need an error payload (the
// transfer-restriction case) construct it directly.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a success envelope around data.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{Status: statusSuccess, Data: data})
}

// Error writes an error envelope with a client-facing message.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, APIResponse{Status: statusError, Message: msg})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
