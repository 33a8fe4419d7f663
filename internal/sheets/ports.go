package sheets

import (
	"context"

	"foodwaste/internal/core"
)

// EntryMirror keeps an external copy of the waste log. Both operations are
// idempotent: appending a mirrored id or removing an unknown one is a no-op.
type EntryMirror interface {
	AppendEntry(ctx context.Context, e core.WasteEntry) error
	RemoveEntry(ctx context.Context, id string) error
}
