package core

import "net/http"

// Envelope pairs decoded response data with the remote HTTP status. Remote
// failures are envelopes too; callers inspect Status.
type Envelope struct {
	data   any
	status int
}

func NewEnvelope(data any, status int) Envelope {
	return Envelope{data: data, status: status}
}

func (e Envelope) Data() any {
	return e.data
}

func (e Envelope) Status() int {
	return e.status
}

func (e Envelope) IsSuccess() bool {
	return e.status >= http.StatusOK && e.status < http.StatusMultipleChoices
}

// Record returns the data as a single JSON object.
func (e Envelope) Record() (Record, bool) {
	record, ok := e.data.(map[string]any)
	return record, ok
}

// Records returns the data as a list of JSON objects. Non-object items make
// the conversion fail.
func (e Envelope) Records() ([]Record, bool) {
	return toRecords(e.data)
}

// Text returns the data when the body was passed through undecoded.
func (e Envelope) Text() (string, bool) {
	text, ok := e.data.(string)
	return text, ok
}

// MirrorEnvelope carries a data manager over the response batch instead of
// the raw data, so callers can persist or read back locally.
type MirrorEnvelope struct {
	manager *DataManager
	status  int
}

func NewMirrorEnvelope(manager *DataManager, status int) MirrorEnvelope {
	return MirrorEnvelope{manager: manager, status: status}
}

func (e MirrorEnvelope) Manager() *DataManager {
	return e.manager
}

func (e MirrorEnvelope) Status() int {
	return e.status
}

func (e MirrorEnvelope) Data() any {
	if e.manager == nil {
		return nil
	}
	return e.manager.Data()
}

func toRecords(data any) ([]Record, bool) {
	switch typed := data.(type) {
	case []Record:
		return typed, true
	case []any:
		out := make([]Record, 0, len(typed))
		for _, item := range typed {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, record)
		}
		return out, true
	default:
		return nil, false
	}
}
