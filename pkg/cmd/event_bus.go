package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/masarflow/masar/pkg/channels/gochannel"
	"github.com/masarflow/masar/pkg/channels/kafka"
	"github.com/masarflow/masar/pkg/eventbus"
)

// NewEventBus creates the event bus for the given provider. Kafka serves
// multi-process deployments; anything else falls back to the in-memory
// channel, which is fine for a single process.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, "masar")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	}
}
