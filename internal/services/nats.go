package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName = "signed-urls"

	SubjectSigned  = "urls.signed"
	SubjectDeleted = "urls.deleted"
	SubjectSwept   = "urls.swept"
)

// RecordEvent describes a change to the record store.
type RecordEvent struct {
	Action     string    `json:"action"`
	Keys       []string  `json:"keys"`
	URL        string    `json:"url,omitempty"`
	Expiration string    `json:"expiration,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers record events. Failures are the publisher's concern;
// callers never abort because an event was lost.
type Publisher interface {
	Publish(subject string, event RecordEvent)
	Close()
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, RecordEvent) {}
func (NopPublisher) Close()                      {}

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	nc  *nats.Conn
	js  nats.JetStreamContext
	log *zap.Logger
}

// ConnectNATS connects to NATS and makes sure the events stream exists.
func ConnectNATS(url string, log *zap.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("signed-url-tools"),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Debug("nats connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	p := &NATSPublisher{nc: nc, js: js, log: log}
	if err := p.ensureStream(); err != nil {
		log.Warn("failed to ensure stream", zap.String("stream", StreamName), zap.Error(err))
	}
	return p, nil
}

func (p *NATSPublisher) ensureStream() error {
	_, err := p.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}

	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"urls.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

func (p *NATSPublisher) Publish(subject string, event RecordEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}

	// Use a message ID for idempotency
	msgID := uuid.New().String()
	if _, err := p.js.Publish(subject, data, nats.MsgId(msgID)); err != nil {
		p.log.Warn("publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
