package event

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ActionHeader string = "x-action"

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// Bus is a thin publisher over a RabbitMQ queue. The fanout layer mirrors
// every push notification here so downstream consumers (audit, offline
// processing) see the same event stream the live clients do.
type Bus struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queue      amqp.Queue
}

func RabbitMQConnect(cfg RabbitMQConfig, queue string) (*Bus, error) {
	connection, err := amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	log.Printf("connection opened to RabbitMQ server")

	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		queue, // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		connection.Close()
		return nil, fmt.Errorf("failed to declare a RabbitMQ queue: %w", err)
	}
	log.Printf("success declare a RabbitMQ queue: %s", queue)

	return &Bus{
		connection: connection,
		channel:    channel,
		queue:      q,
	}, nil
}

// Emit publishes one event. Bounded by a short timeout so a slow broker
// cannot hold up the request path.
func (b *Bus) Emit(action string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return b.channel.PublishWithContext(
		ctx,
		"",           // exchange
		b.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				ActionHeader: action,
			},
			Body: data,
		},
	)
}

func (b *Bus) Close() {
	b.channel.Close()
	b.connection.Close()
}
