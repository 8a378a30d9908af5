package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope every endpoint answers with. Code mirrors the
// HTTP status so mini-program clients can branch on the body alone.
type Response struct {
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, resp Response) {
	if resp.Timestamp == 0 {
		resp.Timestamp = time.Now().UnixMilli()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Fail writes an error envelope whose code matches the HTTP status.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Code: status, Message: message})
}

// GetStringValue returns the value of a nullable string pointer or empty string if nil
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
