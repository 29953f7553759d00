package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CRUD       = (*Resource)(nil)
	_ Transport  = TransportFunc(nil)
	_ Pagination = DefaultPagination()

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
