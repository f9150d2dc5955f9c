package core

import (
	"log/slog"

	"github.com/nasdf/quill/object"
)

// Options configures a document replica.
type Options struct {
	// Actor is the id used to author changes. A random id is generated when empty.
	Actor object.ActorID
	// Logger receives diagnostic messages. Defaults to warnings on stderr.
	Logger Logger
	// MaxPending is the maximum number of batches buffered while waiting for
	// their dependencies. Zero means the default limit.
	MaxPending int
}

const defaultMaxPending = 1 << 16

// SetDefaults fills in unset options.
func (o *Options) SetDefaults() {
	if o.Actor == "" {
		o.Actor = object.NewActorID()
	}
	if o.Logger == nil {
		o.Logger = NewDefaultLogger(slog.LevelWarn)
	}
	if o.MaxPending <= 0 {
		o.MaxPending = defaultMaxPending
	}
}
