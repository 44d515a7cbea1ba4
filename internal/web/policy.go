package web

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/diogo/zaril/internal/format"
	"github.com/diogo/zaril/internal/transcript"
)

// MessagePolicy allows exactly the markup the formatter produces
func MessagePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("li", "br", "pre")
	return p
}

// wireMessage is one rendered transcript entry
type wireMessage struct {
	Role string `json:"role"`
	HTML string `json:"html"`
	Code bool   `json:"code"`
}

// snapshotFrame is sent to the page after every Store change
type snapshotFrame struct {
	Type     string        `json:"type"`
	Session  string        `json:"session"`
	Revision uint64        `json:"revision"`
	Busy     bool          `json:"busy"`
	Input    string        `json:"input"`
	Messages []wireMessage `json:"messages"`
	Error    string        `json:"error,omitempty"`
}

// inboundFrame is sent by the page
type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// newSnapshotFrame renders st for the page
func newSnapshotFrame(sessionID string, st transcript.State, errText string, policy *bluemonday.Policy) snapshotFrame {
	msgs := make([]wireMessage, len(st.Messages))
	for i, m := range st.Messages {
		d := format.Format(m.Content)
		msgs[i] = wireMessage{
			Role: string(m.Role),
			HTML: policy.Sanitize(d.HTML()),
			Code: d.Code,
		}
	}
	return snapshotFrame{
		Type:     "snapshot",
		Session:  sessionID,
		Revision: st.Revision,
		Busy:     st.Busy,
		Input:    st.Input,
		Messages: msgs,
		Error:    errText,
	}
}
