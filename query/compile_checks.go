package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-resources/core"
)

var (
	_ gocmd.Querier[ListMessage, core.Envelope]        = (*ListQuery)(nil)
	_ gocmd.Querier[RetrieveMessage, core.Envelope]    = (*RetrieveQuery)(nil)
	_ gocmd.Querier[GetLocalMessage, core.LocalResult] = (*GetLocalQuery)(nil)
)
