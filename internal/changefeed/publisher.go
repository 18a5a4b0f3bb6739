package changefeed

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/resilience"
)

// Sink writes events; *kafka.Producer satisfies it.
type Sink interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Publisher queues changes and writes them from a single goroutine so the
// request path never waits on the broker.
type Publisher struct {
	sink     Sink
	instance string
	eventCh  chan Event
	logger   *slog.Logger
	done     chan struct{}
	retry    resilience.RetryConfig
}

func NewPublisher(sink Sink, instance string, bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Publisher{
		sink:     sink,
		instance: instance,
		eventCh:  make(chan Event, bufferSize),
		logger:   slog.Default().With("component", "changefeed-publisher"),
		done:     make(chan struct{}),
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
		},
	}
}

func (p *Publisher) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case event, ok := <-p.eventCh:
				if !ok {
					return
				}
				p.write(ctx, event)
			case <-ctx.Done():
				p.drainRemaining()
				return
			}
		}
	}()
	p.logger.Info("change publisher started", "buffer_size", cap(p.eventCh), "instance", p.instance)
}

// Publish enqueues a change. When the buffer is full the change is dropped
// and logged; other instances then miss it until they reload.
func (p *Publisher) Publish(ch vocabulary.Change) {
	select {
	case p.eventCh <- newEvent(p.instance, ch):
	default:
		p.logger.Warn("change event dropped (buffer full)", "kind", ch.Kind)
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() {
	close(p.eventCh)
	<-p.done
}

func (p *Publisher) write(ctx context.Context, event Event) {
	err := resilience.Retry(ctx, "publish change", p.retry, func() error {
		return p.sink.Publish(ctx, kafka.Event{Key: partitionKey, Value: event})
	})
	if err != nil {
		p.logger.Error("failed to publish change", "id", event.ID, "kind", event.Change.Kind, "error", err)
	}
}

func (p *Publisher) drainRemaining() {
	var batch []kafka.Event
	for {
		select {
		case event, ok := <-p.eventCh:
			if !ok {
				p.flush(batch)
				return
			}
			batch = append(batch, kafka.Event{Key: partitionKey, Value: event})
		default:
			p.flush(batch)
			return
		}
	}
}

func (p *Publisher) flush(batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.sink.PublishBatch(ctx, batch); err != nil {
		p.logger.Error("failed to publish remaining changes", "count", len(batch), "error", err)
	}
}
