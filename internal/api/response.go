package api

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body. Payload shapes are defined by the
// handlers; no envelope is added.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONRaw writes pre-encoded JSON as the response body.
func JSONRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}

func JSONError(w http.ResponseWriter, status int, err error) {
	JSONErrorMessage(w, status, err.Error())
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
