// Package core contains the resource proxy, the local mirror data manager and
// the contracts they depend on (transport, validation, pagination and local
// storage). Adapters for concrete libraries live in sibling packages; core
// must not import them.
package core
