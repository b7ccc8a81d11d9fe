package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leads"

	// Change events fan out with per-type routing keys.
	KeyLeadCreated = "lead.created"
	KeyLeadUpdated = "lead.updated"
	KeyLeadDeleted = "lead.deleted"

	// Conversions feed the side-effect worker.
	KeyConversion       = "lead.converted"
	ConversionQueueName = "q.conversions"
	DLQName             = "q.conversions.dlq"
	DLXName             = "ex.dlx"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}

	if err := ch.QueueBind(DLQName, KeyConversion, DLXName, false, nil); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	// Rejected conversion messages land on the DLQ instead of evaporating.
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": KeyConversion,
	}

	if _, err := ch.QueueDeclare(ConversionQueueName, true, false, false, false, args); err != nil {
		return err
	}

	return ch.QueueBind(ConversionQueueName, KeyConversion, ExchangeName, false, nil)
}
