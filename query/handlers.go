package query

import (
	"context"

	"github.com/goliatone/go-resources/core"
)

type ListQuery struct {
	lister core.Lister
}

func NewListQuery(lister core.Lister) *ListQuery {
	return &ListQuery{lister: lister}
}

func (q *ListQuery) Query(ctx context.Context, msg ListMessage) (core.Envelope, error) {
	if q == nil || q.lister == nil {
		return core.Envelope{}, queryDependencyError("query: resource lister is required")
	}
	return q.lister.List(ctx, msg.Query)
}

type RetrieveQuery struct {
	retriever core.Retriever
}

func NewRetrieveQuery(retriever core.Retriever) *RetrieveQuery {
	return &RetrieveQuery{retriever: retriever}
}

func (q *RetrieveQuery) Query(ctx context.Context, msg RetrieveMessage) (core.Envelope, error) {
	if q == nil || q.retriever == nil {
		return core.Envelope{}, queryDependencyError("query: resource retriever is required")
	}
	return q.retriever.Retrieve(ctx, msg.PK, msg.Query)
}

type GetLocalQuery struct {
	store core.LocalStore
	opts  []core.ManagerOption
}

func NewGetLocalQuery(store core.LocalStore, opts ...core.ManagerOption) *GetLocalQuery {
	return &GetLocalQuery{store: store, opts: opts}
}

func (q *GetLocalQuery) Query(ctx context.Context, msg GetLocalMessage) (core.LocalResult, error) {
	if q == nil {
		return core.LocalResult{}, queryDependencyError("query: get local query is nil")
	}
	if q.store == nil && !msg.AsKeyList {
		return core.LocalResult{}, queryDependencyError("query: local store is required")
	}
	opts := append([]core.ManagerOption{}, q.opts...)
	opts = append(opts, core.WithResourceName(msg.Resource))
	if msg.KeyField != "" {
		opts = append(opts, core.WithKeyField(msg.KeyField))
	}
	manager := core.NewDataManager(msg.Data, q.store, opts...)
	return manager.GetLocal(ctx, core.GetLocalOptions{
		ExactOrder: msg.ExactOrder,
		AsKeyList:  msg.AsKeyList,
	})
}
