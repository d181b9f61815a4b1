package utils

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ─── CONNECTION AND CHANNEL MANAGEMENT ────────────────────────────────────

func NewRabbitMQClient(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// ─── EXCHANGE OPERATIONS ──────────────────────────────────────────────────

func DeclareExchange(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(name, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("error while declaring an exchange: %w", err)
	}
	return nil
}
