package events

import (
	"encoding/json"
	"time"
)

// Admin console notifications.
const (
	JobRequestCreated          = "job_request_created"
	JobRequestUpdated          = "job_request_updated"
	JobRequestDeleted          = "job_request_deleted"
	RequestedPostStatusChanged = "requested_post_status_changed"
	ApplicationStatusChanged   = "application_status_changed"
	MasterDataChanged          = "master_data_changed"
	ExaminerChanged            = "examiner_changed"
	Ping                       = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes an event envelope; msg is what the admin toast shows.
func MakeEvent(reqID, typ, actor, msg string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Actor:     actor,
		Message:   msg,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
