package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateMessage]        = (*CreateCommand)(nil)
	_ gocmd.Commander[UpdateMessage]        = (*UpdateCommand)(nil)
	_ gocmd.Commander[DestroyMessage]       = (*DestroyCommand)(nil)
	_ gocmd.Commander[PersistMirrorMessage] = (*PersistMirrorCommand)(nil)
)
