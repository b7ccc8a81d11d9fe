package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vportela/leadcrm/internal/entity"
)

// ConversionPayload is the message the side-effect worker consumes when a
// lead transitions into Won.
type ConversionPayload struct {
	LeadID         string `json:"lead_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AssignedTo     string `json:"assigned_to"`
	OwnerID        string `json:"owner_id"`
	PreviousStatus string `json:"previous_status"`
	Origin         string `json:"origin"`
}

type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func (p *Producer) PublishChange(ctx context.Context, ev entity.ChangeEvent) error {
	var key string
	switch ev.Type {
	case entity.ChangeInsert:
		key = KeyLeadCreated
	case entity.ChangeUpdate:
		key = KeyLeadUpdated
	case entity.ChangeDelete:
		key = KeyLeadDeleted
	default:
		return fmt.Errorf("unknown change type: %s", ev.Type)
	}
	return p.publish(ctx, key, ev)
}

func (p *Producer) PublishConversion(ctx context.Context, payload ConversionPayload) error {
	return p.publish(ctx, KeyConversion, payload)
}

func (p *Producer) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
