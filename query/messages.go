package query

import (
	"strings"
)

const (
	TypeList     = "resources.query.list"
	TypeRetrieve = "resources.query.retrieve"
	TypeGetLocal = "resources.query.mirror.get_local"
)

type ListMessage struct {
	Query map[string]string
}

func (ListMessage) Type() string { return TypeList }

func (ListMessage) Validate() error { return nil }

type RetrieveMessage struct {
	PK    string
	Query map[string]string
}

func (RetrieveMessage) Type() string { return TypeRetrieve }

func (m RetrieveMessage) Validate() error {
	if strings.TrimSpace(m.PK) == "" {
		return queryValidationError("pk", "primary key is required")
	}
	return nil
}

// GetLocalMessage reads back the locally stored subset of Data.
type GetLocalMessage struct {
	Resource   string
	KeyField   string
	Data       any
	ExactOrder bool
	AsKeyList  bool
}

func (GetLocalMessage) Type() string { return TypeGetLocal }

func (m GetLocalMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return queryValidationError("resource", "resource name is required")
	}
	return nil
}
