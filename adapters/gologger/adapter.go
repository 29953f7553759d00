package gologger

import (
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-resources/core"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ResourceOptions resolves a named logger and returns the resource options
// that install it.
func ResourceOptions(name string, provider glog.LoggerProvider, logger glog.Logger) []core.Option {
	_, resolvedLogger := Resolve(name, provider, logger)
	return []core.Option{core.WithLogger(resolvedLogger)}
}

// ManagerOption resolves a named logger for a data manager.
func ManagerOption(name string, provider glog.LoggerProvider, logger glog.Logger) core.ManagerOption {
	_, resolvedLogger := Resolve(name, provider, logger)
	return core.WithManagerLogger(resolvedLogger)
}
