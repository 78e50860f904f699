package collector

import (
	"encoding/json"
	"time"
)

// stateRequest is the command envelope the appliance expects.
type stateRequest struct {
	Msg  string `json:"msg"`
	Time string `json:"time"`
}

// stateRequestPayload encodes a REQUEST-CURRENT-STATE command stamped
// with the current UTC time, as the appliance firmware requires.
func stateRequestPayload(msg string, now time.Time) []byte {
	payload, _ := json.Marshal(stateRequest{ //nolint:errcheck // Static struct cannot fail to encode
		Msg:  msg,
		Time: now.UTC().Format(time.RFC3339),
	})
	return payload
}
