// Package events publishes listing lifecycle events to an MQTT broker.
// Publishing is best-effort: a nil Publisher is a no-op, and broker failures
// never fail the request that produced the event.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/carsawa/carsawa-api/internal/config"
	"github.com/carsawa/carsawa-api/internal/models"
)

// Listing event types.
const (
	CarCreated       = "created"
	CarUpdated       = "updated"
	CarDeleted       = "deleted"
	CarStatusChanged = "status_changed"
)

// Event is the JSON payload published for a listing change.
type Event struct {
	Type      string    `json:"type"`
	CarID     string    `json:"car_id"`
	DealerID  string    `json:"dealer_id"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits listing events to an MQTT topic per event type.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewPublisher connects to the configured broker. Returns (nil, nil) when no
// broker is configured; a nil Publisher is safe to call.
func NewPublisher(cfg config.MQTT) (*Publisher, error) {
	if cfg.BrokerURL == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out for %s", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}

	return &Publisher{client: client, topicPrefix: cfg.TopicPrefix}, nil
}

// Publish emits one event for the given listing. QoS 0, fire and forget.
func (p *Publisher) Publish(eventType string, car *models.Car) {
	if p == nil || car == nil {
		return
	}

	event := Event{
		Type:      eventType,
		CarID:     car.ID.Hex(),
		DealerID:  car.Dealer.Hex(),
		Status:    car.Status,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal listing event")
		return
	}

	topic := fmt.Sprintf("%s/%s", p.topicPrefix, eventType)
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.WithFields(log.Fields{
				"topic":  topic,
				"car_id": event.CarID,
			}).WithError(token.Error()).Warn("Failed to publish listing event")
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
