package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// 事件类型
const (
	RegistroSubmitted = "registro.submitted"
	RegistroApproved  = "registro.approved"
	RegistroRejected  = "registro.rejected"
	ThreadCreated     = "thread.created"
	ContactReceived   = "contact.received"
)

type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// RabbitPublisher 发到一个持久化队列（默认交换机，routing key = 队列名）
type RabbitPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewRabbit(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %q: %w", queue, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, queue: q.Name}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp.Channel 不能并发发布
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         e.Type,
		MessageId:    e.ID,
		Timestamp:    e.At,
		Body:         body,
	})
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Nop 未配置消息队列时使用
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// New 没配 URL 或连接失败时退回 Nop
func New(url, queue string, l *zap.Logger) Publisher {
	if url == "" {
		return Nop{}
	}
	p, err := NewRabbit(url, queue)
	if err != nil {
		l.Warn("events disabled", zap.Error(err))
		return Nop{}
	}
	l.Info("events publisher ready", zap.String("queue", queue))
	return p
}

// Emit 尽力发布：失败只记日志
func Emit(ctx context.Context, l *zap.Logger, p Publisher, typ, id string, data any) {
	if p == nil {
		return
	}
	e := Event{Type: typ, ID: id, At: time.Now().UTC(), Data: data}
	if err := p.Publish(context.WithoutCancel(ctx), e); err != nil {
		l.Warn("event publish failed", zap.String("type", typ), zap.String("id", id), zap.Error(err))
	}
}
