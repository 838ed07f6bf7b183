package relay

import (
	"encoding/json"
	"fmt"
	"io"
)

// framePayload is the JSON body of one SSE data frame. Exactly one of
// Token, Done or Error+Message is set per frame, and every stream ends
// with exactly one Done or Error frame.
type framePayload struct {
	Token   string `json:"token,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func tokenFrame(text string) framePayload {
	return framePayload{Token: text}
}

func doneFrame() framePayload {
	return framePayload{Done: true}
}

func errorFrame(message string) framePayload {
	return framePayload{Error: true, Message: message}
}

// writeFrame emits one self-contained newline-terminated record. A
// write error means the peer is gone; callers stop emitting but do not
// treat it as a relay failure.
func writeFrame(w io.Writer, p framePayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
