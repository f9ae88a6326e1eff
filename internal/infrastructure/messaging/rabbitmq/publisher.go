package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
)

const (
	DefaultExchange = "admin.events"

	// confirmWait bounds the broker confirm when ctx carries no deadline.
	confirmWait = 2 * time.Second
)

// Publisher sends account lifecycle events to a durable topic exchange with
// publisher confirms. The routing key is the event type. Publishes are not
// mandatory since nothing has to be bound to the exchange.
type Publisher struct {
	url      string
	exchange string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	return nil
}

func (p *Publisher) PublishAccountEvent(ctx context.Context, evt accounts.AccountEvent) error {
	body, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil {
		if err := p.dial(); err != nil {
			return err
		}
	}
	p.discardConfirms()

	key := string(evt.Type)
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         key,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		p.drop()
		return fmt.Errorf("rabbitmq publish %s: %w", key, err)
	}
	return p.awaitConfirm(ctx, key)
}

// eventMessage is the wire shape consumed by downstream services. It never
// carries credentials.
type eventMessage struct {
	Type      string    `json:"type"`
	AccountID string    `json:"account_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	At        time.Time `json:"at"`
}

func encodeEvent(evt accounts.AccountEvent) ([]byte, error) {
	body, err := json.Marshal(eventMessage{
		Type:      string(evt.Type),
		AccountID: evt.AccountID,
		ActorID:   evt.ActorID,
		Role:      evt.Role.String(),
		At:        evt.At,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// dial opens a confirm-mode channel and declares the exchange. Caller holds
// p.mu or owns p exclusively.
func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	setup := func() error {
		if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq exchange %s: %w", p.exchange, err)
		}
		if err := ch.Confirm(false); err != nil {
			return fmt.Errorf("rabbitmq confirm mode: %w", err)
		}
		return nil
	}
	if err := setup(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn, p.ch = conn, ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

// discardConfirms empties confirms left over from a publish that timed out.
func (p *Publisher) discardConfirms() {
	for {
		select {
		case _, ok := <-p.confirms:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (p *Publisher) awaitConfirm(ctx context.Context, key string) error {
	select {
	case conf, ok := <-p.confirms:
		if !ok {
			p.drop()
			return fmt.Errorf("rabbitmq %s: %w", key, amqp.ErrClosed)
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq %s: nack for delivery %d", key, conf.DeliveryTag)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq %s: confirm: %w", key, ctx.Err())
	}
}

// drop tears the connection down; the next publish redials.
func (p *Publisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn, p.confirms = nil, nil, nil
}
