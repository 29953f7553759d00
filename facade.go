package resources

import (
	"fmt"

	resourcescommand "github.com/goliatone/go-resources/command"
	"github.com/goliatone/go-resources/core"
	resourcesquery "github.com/goliatone/go-resources/query"
)

type Commands struct {
	Create        *resourcescommand.CreateCommand
	Update        *resourcescommand.UpdateCommand
	Destroy       *resourcescommand.DestroyCommand
	PersistMirror *resourcescommand.PersistMirrorCommand
}

type Queries struct {
	List     *resourcesquery.ListQuery
	Retrieve *resourcesquery.RetrieveQuery
	GetLocal *resourcesquery.GetLocalQuery
}

// Facade exposes one resource and its local mirror as go-command handlers.
type Facade struct {
	resource core.CRUD
	store    core.LocalStore
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	store          core.LocalStore
	managerOptions []core.ManagerOption
}

func WithLocalStore(store core.LocalStore) FacadeOption {
	return func(options *facadeOptions) {
		options.store = store
	}
}

// WithManagerOptions applies to every mirror command and query.
func WithManagerOptions(opts ...core.ManagerOption) FacadeOption {
	return func(options *facadeOptions) {
		options.managerOptions = append(options.managerOptions, opts...)
	}
}

func NewFacade(resource core.CRUD, opts ...FacadeOption) (*Facade, error) {
	if resource == nil {
		return nil, fmt.Errorf("resources: resource is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{resource: resource, store: cfg.store}
	facade.commands = Commands{
		Create:        resourcescommand.NewCreateCommand(resource),
		Update:        resourcescommand.NewUpdateCommand(resource),
		Destroy:       resourcescommand.NewDestroyCommand(resource),
		PersistMirror: resourcescommand.NewPersistMirrorCommand(cfg.store, cfg.managerOptions...),
	}
	facade.queries = Queries{
		List:     resourcesquery.NewListQuery(resource),
		Retrieve: resourcesquery.NewRetrieveQuery(resource),
		GetLocal: resourcesquery.NewGetLocalQuery(cfg.store, cfg.managerOptions...),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Resource() core.CRUD {
	if f == nil {
		return nil
	}
	return f.resource
}

func (f *Facade) LocalStore() core.LocalStore {
	if f == nil {
		return nil
	}
	return f.store
}
