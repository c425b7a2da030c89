package history

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("history slot empty")

// ErrNotFound is returned when an item id is not in the history.
var ErrNotFound = errors.New("history item not found")

// Slot port: a durable key-value slot under a fixed name. The whole value is
// replaced on every Write. Implementations must be safe for concurrent use.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, value []byte) error
}
