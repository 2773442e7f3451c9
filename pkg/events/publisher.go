package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dbehnke/viterbi-decoder/pkg/logger"
)

// Config holds event publisher configuration.
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

// Publisher formats topics and serializes decoder lifecycle events for an
// MQTT-style broker. No broker client is connected: each event is encoded
// to JSON and logged at debug level, and nothing is sent over the network.
type Publisher struct {
	config Config
	log    *logger.Logger
}

// Event types for publishing.

// BlockStartedEvent marks entry into the UP phase for a new block.
type BlockStartedEvent struct {
	TrellisName string    `json:"trellis_name"`
	BlockBits   int       `json:"block_bits"`
	Timestamp   time.Time `json:"timestamp"`
}

// BlockDecodedEvent reports a completed OUTPUT phase.
type BlockDecodedEvent struct {
	TrellisName     string    `json:"trellis_name"`
	Terminated      bool      `json:"terminated"`
	SymbolsConsumed int       `json:"symbols_consumed"`
	BitsProduced    int       `json:"bits_produced"`
	TerminalMetric  float64   `json:"terminal_metric"`
	Timestamp       time.Time `json:"timestamp"`
}

// BlockSpilledEvent reports a block that exceeded the output budget and
// was split across multiple Decode calls.
type BlockSpilledEvent struct {
	TrellisName  string    `json:"trellis_name"`
	BitsEmitted  int       `json:"bits_emitted"`
	BitsPending  int       `json:"bits_pending"`
	Timestamp    time.Time `json:"timestamp"`
}

// DecodeErrorEvent reports a rejected construction or decode call.
type DecodeErrorEvent struct {
	TrellisName string    `json:"trellis_name"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// New creates a new event publisher.
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &Publisher{
		config: config,
		log:    log.WithComponent("events"),
	}
}

// Start starts the event publisher.
func (p *Publisher) Start(ctx context.Context) error {
	if !p.config.Enabled {
		p.log.Info("event publisher disabled")
		return nil
	}

	p.log.Info("starting event publisher",
		logger.String("broker", p.config.Broker),
		logger.String("client_id", p.config.ClientID))

	// TODO: implement actual broker connection when a paho.mqtt client is added
	// For now, this is a no-op stub that allows the application to start.
	p.log.Warn("broker connection not yet implemented - events will not be published")

	return nil
}

// Stop stops the event publisher.
func (p *Publisher) Stop() {
	if !p.config.Enabled {
		return
	}

	p.log.Info("stopping event publisher")
	// TODO: disconnect broker client when implemented
}

// PublishBlockStarted publishes a block-started event.
func (p *Publisher) PublishBlockStarted(event BlockStartedEvent) error {
	if !p.config.Enabled {
		return nil
	}

	topic := p.formatTopic("blocks/started")
	return p.publish(topic, event)
}

// PublishBlockDecoded publishes a block-decoded event.
func (p *Publisher) PublishBlockDecoded(event BlockDecodedEvent) error {
	if !p.config.Enabled {
		return nil
	}

	topic := p.formatTopic("blocks/decoded")
	return p.publish(topic, event)
}

// PublishBlockSpilled publishes a block-spilled event.
func (p *Publisher) PublishBlockSpilled(event BlockSpilledEvent) error {
	if !p.config.Enabled {
		return nil
	}

	topic := p.formatTopic("blocks/spilled")
	return p.publish(topic, event)
}

// PublishDecodeError publishes a decode-error event.
func (p *Publisher) PublishDecodeError(event DecodeErrorEvent) error {
	if !p.config.Enabled {
		return nil
	}

	topic := p.formatTopic("errors")
	return p.publish(topic, event)
}

// publish publishes an event to a topic.
func (p *Publisher) publish(topic string, event interface{}) error {
	payload, err := p.serializeEvent(event)
	if err != nil {
		p.log.Error("failed to serialize event",
			logger.String("topic", topic),
			logger.Error(err))
		return err
	}

	// TODO: implement actual publish when a broker client is added
	p.log.Debug("would publish event",
		logger.String("topic", topic),
		logger.Int("payload_size", len(payload)))

	return nil
}

// serializeEvent serializes an event to JSON.
func (p *Publisher) serializeEvent(event interface{}) ([]byte, error) {
	return json.Marshal(event)
}

// formatTopic formats a topic with the configured prefix.
func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}
