package interfaces

import (
	"context"

	"quizhub/pkg/types"
)

// QuestionRepository supplies randomized question sets for new sessions.
// Order is re-randomized on every call; the result may be shorter than
// requested when the inventory runs out.
type QuestionRepository interface {
	FetchRandom(ctx context.Context, n int) ([]types.Question, error)
}

// Emitter delivers a named event to every connection in a room.
// Implementations must be safe for concurrent use from timer callbacks
// and connection handlers.
type Emitter interface {
	Broadcast(room, event string, payload any)
}
