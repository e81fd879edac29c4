package vigilcli

import (
	"encoding/json"

	"github.com/vigild/vigil/common"
)

type Request struct {
	Method  common.Method `json:"method"`
	Message any           `json:"message,omitempty"`
}

type Response struct {
	Ok      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}
