package server

import "encoding/json"

// Response is the envelope of every control-surface reply. Ok
// distinguishes results from failures; Error carries the failure text
// and Message the result payload, never both.
type Response struct {
	Ok      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message any    `json:"message,omitempty"`
}

// MakeResult frames a successful reply around a handler's payload.
func MakeResult(res any) []byte {
	b, _ := json.Marshal(Response{
		Ok:      true,
		Message: res,
	})
	return b
}

// MakeError frames a failed reply carrying the error text. The caller
// sees the text verbatim.
func MakeError(err string) []byte {
	b, _ := json.Marshal(Response{
		Error: err,
	})
	return b
}
