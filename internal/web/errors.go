package web

// errors.go renders failed requests.
//
// The technical error is logged with the request id; the client only sees the
// mapped user message and its support code, as JSON when asked for, plain
// text otherwise.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/Eigenbraid/Dice/internal/logging"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// respondError logs err and writes its user message with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:  userMsg.Message,
			Action: userMsg.Action,
			Code:   userMsg.Code,
		})
		return
	}
	http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
