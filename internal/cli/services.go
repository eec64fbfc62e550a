package cli

import (
	"time"

	"notare/internal/amqp"
	"notare/internal/cache"
	"notare/internal/calendar"
	"notare/internal/config"
	"notare/internal/journal"
	"notare/internal/log"
	"notare/internal/services"
)

const lookupCacheSize = 32

// ConnectAMQP returns a bus client, or nil when AMQP_URL is unset or the
// broker is unreachable. Callers continue without publishing in that case.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - journal events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// NewJournalService wires the store, the configured timezone and cache TTL,
// and the publisher when there is one.
func NewJournalService(cfg *config.Config, logger *log.Logger, store journal.Store, client *amqp.Client) *services.JournalService {
	loc := cfg.Location()
	opts := []services.Option{
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
		services.WithLogger(logger.WithComponent(log.ComponentJournal)),
		services.WithLookupCache(cache.NewLRUCache[calendar.MapLookup](lookupCacheSize, cfg.CacheTTL)),
	}
	if client != nil {
		opts = append(opts, services.WithPublisher(client))
	}
	return services.NewJournalService(store, opts...)
}
