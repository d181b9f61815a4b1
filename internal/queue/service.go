package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mahirjain10/search-term-predictor/internal/predictor"
	"github.com/mahirjain10/search-term-predictor/internal/utils"
)

const (
	predictionRoutingKey = "prediction"
	publishTimeout       = 5 * time.Second
)

// RabbitMqService announces finished predictions on a direct exchange.
type RabbitMqService struct {
	rabbitMqConn *amqp.Connection
	channel      *amqp.Channel
	exchange     string
	logger       *slog.Logger
	mu           sync.Mutex
}

func NewRabbitMqService(url string, exchange string, logger *slog.Logger) (*RabbitMqService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := utils.NewRabbitMQClient(url)
	if err != nil {
		return nil, err
	}

	ch, err := utils.NewChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := utils.DeclareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Debug("Declared prediction exchange", "exchange", exchange)
	return &RabbitMqService{rabbitMqConn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// PublishPrediction sends one prediction event with routing key "prediction".
func (service *RabbitMqService) PublishPrediction(ctx context.Context, prediction *predictor.Prediction) error {
	body, err := EncodePrediction(prediction)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	service.mu.Lock()
	defer service.mu.Unlock()

	err = service.channel.PublishWithContext(ctx,
		service.exchange,
		predictionRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	service.logger.Debug("Published prediction event", "object", prediction.ObjectName)
	return nil
}

// EncodePrediction renders the JSON body of a prediction event.
func EncodePrediction(prediction *predictor.Prediction) ([]byte, error) {
	data := utils.InitPredictionData(prediction.ObjectName, prediction.ImageURL, prediction.Result)
	body, err := utils.SerializeJSON(utils.InitPredictionEvent(data))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}
	return body, nil
}

func (service *RabbitMqService) Close() error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.channel.Close(); err != nil {
		service.logger.Warn("Error closing channel", "error", err)
	}
	return service.rabbitMqConn.Close()
}
