package command

import (
	"strings"

	"github.com/goliatone/go-resources/core"
)

const (
	TypeCreate        = "resources.command.create"
	TypeUpdate        = "resources.command.update"
	TypeDestroy       = "resources.command.destroy"
	TypePersistMirror = "resources.command.mirror.persist"
)

type CreateMessage struct {
	Payload core.Record
	Query   map[string]string
}

func (CreateMessage) Type() string { return TypeCreate }

func (m CreateMessage) Validate() error {
	if m.Payload == nil {
		return commandValidationError("payload", "payload is required")
	}
	return nil
}

type UpdateMessage struct {
	PK      string
	Payload core.Record
	Query   map[string]string
	Partial bool
}

func (UpdateMessage) Type() string { return TypeUpdate }

func (m UpdateMessage) Validate() error {
	if strings.TrimSpace(m.PK) == "" {
		return commandValidationError("pk", "primary key is required")
	}
	if m.Payload == nil {
		return commandValidationError("payload", "payload is required")
	}
	return nil
}

type DestroyMessage struct {
	PK    string
	Query map[string]string
}

func (DestroyMessage) Type() string { return TypeDestroy }

func (m DestroyMessage) Validate() error {
	if strings.TrimSpace(m.PK) == "" {
		return commandValidationError("pk", "primary key is required")
	}
	return nil
}

// PersistMirrorMessage carries a batch of remote records to upsert into the
// local store under Resource.
type PersistMirrorMessage struct {
	Resource string
	KeyField string
	Data     any
}

func (PersistMirrorMessage) Type() string { return TypePersistMirror }

func (m PersistMirrorMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	return nil
}
