package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// DefaultQueue is used when Config.Queue is empty.
const DefaultQueue = "confirmation_codes"

// ConfirmationMessage is the payload published for every issued confirmation code.
type ConfirmationMessage struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Code     string    `json:"confirmation_code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex // serialises publishes from concurrent signups
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// confirmation queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected and %s declared.", queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// SendConfirmationCode publishes a persistent ConfirmationMessage. It
// satisfies services.Notifier.
func (c *Client) SendConfirmationCode(email, username, code string) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(ConfirmationMessage{
		Email:    email,
		Username: username,
		Code:     code,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent confirmation code for %s", username)
	return nil
}

// ConsumeConfirmationCodes delivers every queued ConfirmationMessage to handler
// in a background goroutine. Successful deliveries are acked; failures are
// requeued once and dropped on redelivery.
func (c *Client) ConsumeConfirmationCodes(handler func(ConfirmationMessage) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declare(c.channel, c.queue)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for confirmation codes on %s", queue.Name)

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()
	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(ConfirmationMessage) error) {
	var m ConfirmationMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		log.Printf("Dropping malformed message %d: %v", msg.DeliveryTag, err)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, err)
		}
		return
	}

	if err := handler(m); err != nil {
		log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
		// Requeue only on first failure to avoid a poison loop.
		if err := msg.Nack(false, !msg.Redelivered); err != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("Error acking message %d: %v", msg.DeliveryTag, err)
	}
}
