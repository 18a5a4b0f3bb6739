// Package changefeed replicates vocabulary mutations between service
// instances over Kafka. The instance that performed a mutation owns its
// persistence; followers only apply it in memory.
package changefeed

import (
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

// partitionKey keeps all changes on one partition so followers apply them
// in the order they were made.
const partitionKey = "vocabulary"

// Event is the message published for each mutation.
type Event struct {
	ID       string            `json:"id"`
	Instance string            `json:"instance"`
	Change   vocabulary.Change `json:"change"`
	At       time.Time         `json:"at"`
}

func newEvent(instance string, ch vocabulary.Change) Event {
	return Event{
		ID:       uuid.NewString(),
		Instance: instance,
		Change:   ch,
		At:       time.Now().UTC(),
	}
}
