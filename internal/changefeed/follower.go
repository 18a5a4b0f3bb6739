package changefeed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/kafka"
)

// Applier applies a change made by another instance.
type Applier interface {
	ApplyRemote(ctx context.Context, ch vocabulary.Change) error
}

// Follower turns change-feed messages into local in-memory mutations.
type Follower struct {
	instance string
	applier  Applier
	logger   *slog.Logger
}

func NewFollower(instance string, applier Applier) *Follower {
	return &Follower{
		instance: instance,
		applier:  applier,
		logger:   slog.Default().With("component", "changefeed-follower"),
	}
}

// Handle is a kafka.MessageHandler. Events this instance published are
// skipped. Undecodable messages are logged and acknowledged so they do not
// block the partition.
func (f *Follower) Handle(ctx context.Context, _ []byte, value []byte) error {
	event, err := kafka.DecodeJSON[Event](value)
	if err != nil {
		f.logger.Warn("skipping undecodable change event", "error", err)
		return nil
	}
	if event.Instance == f.instance {
		return nil
	}
	if err := f.applier.ApplyRemote(ctx, event.Change); err != nil {
		return fmt.Errorf("applying change %s from %s: %w", event.ID, event.Instance, err)
	}
	f.logger.Debug("applied remote change", "id", event.ID, "kind", event.Change.Kind, "from", event.Instance)
	return nil
}
