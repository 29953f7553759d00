package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-resources/core"
)

type CreateCommand struct {
	creator core.Creator
}

func NewCreateCommand(creator core.Creator) *CreateCommand {
	return &CreateCommand{creator: creator}
}

func (c *CreateCommand) Execute(ctx context.Context, msg CreateMessage) error {
	if c == nil || c.creator == nil {
		return commandDependencyError("command: resource creator is required")
	}
	out, err := c.creator.Create(ctx, msg.Payload, msg.Query)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCommand struct {
	updater core.Updater
}

func NewUpdateCommand(updater core.Updater) *UpdateCommand {
	return &UpdateCommand{updater: updater}
}

func (c *UpdateCommand) Execute(ctx context.Context, msg UpdateMessage) error {
	if c == nil || c.updater == nil {
		return commandDependencyError("command: resource updater is required")
	}
	out, err := c.updater.Update(ctx, msg.PK, msg.Payload, msg.Query, msg.Partial)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DestroyCommand struct {
	destroyer core.Destroyer
}

func NewDestroyCommand(destroyer core.Destroyer) *DestroyCommand {
	return &DestroyCommand{destroyer: destroyer}
}

func (c *DestroyCommand) Execute(ctx context.Context, msg DestroyMessage) error {
	if c == nil || c.destroyer == nil {
		return commandDependencyError("command: resource destroyer is required")
	}
	out, err := c.destroyer.Destroy(ctx, msg.PK, msg.Query)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// PersistMirrorCommand upserts a batch into the local store and stores the
// persisted keys, in batch order, as its result.
type PersistMirrorCommand struct {
	store core.LocalStore
	opts  []core.ManagerOption
}

func NewPersistMirrorCommand(store core.LocalStore, opts ...core.ManagerOption) *PersistMirrorCommand {
	return &PersistMirrorCommand{store: store, opts: opts}
}

func (c *PersistMirrorCommand) Execute(ctx context.Context, msg PersistMirrorMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: local store is required")
	}
	opts := append([]core.ManagerOption{}, c.opts...)
	opts = append(opts, core.WithResourceName(msg.Resource))
	if msg.KeyField != "" {
		opts = append(opts, core.WithKeyField(msg.KeyField))
	}
	manager := core.NewDataManager(msg.Data, c.store, opts...)
	if err := manager.Persist(ctx); err != nil {
		return err
	}
	keys, err := manager.Keys()
	if err != nil {
		return err
	}
	storeResult(ctx, keys)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
