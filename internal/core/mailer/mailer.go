package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"vitrina/internal/core/config"
	"vitrina/internal/domain"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender 通知适配器
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// New 配了 SendGrid key 用 SendGrid（带熔断），否则只打日志
func New(c config.Mail, l *zap.Logger) Sender {
	if c.SendGridAPIKey == "" {
		l.Warn("mail: no sendgrid api key, messages are only logged")
		return &LogSender{l: l.Named("mail")}
	}
	return NewBreaker(NewSendGrid(c.SendGridAPIKey, c.FromEmail, c.FromName), l)
}

type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGrid(apiKey, fromEmail, fromName string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendGrid) Send(ctx context.Context, m Message) error {
	msg := mail.NewSingleEmail(s.from, m.Subject, mail.NewEmail("", m.To), m.Text, m.HTML)
	res, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// Breaker 连续失败后熔断，熔断期间直接返回 unavailable
type Breaker struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Sender, l *zap.Logger) *Breaker {
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "mail",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

func (b *Breaker) Send(ctx context.Context, m Message) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, m)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Unavailable("mail: circuit open", err)
	}
	return err
}

type LogSender struct{ l *zap.Logger }

func NewLogSender(l *zap.Logger) *LogSender { return &LogSender{l: l} }

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.l.Info("mail (not sent)", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

// Notify 尽力发送：失败只记日志，不影响主流程
func Notify(ctx context.Context, l *zap.Logger, s Sender, m Message) {
	if s == nil || m.To == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Send(ctx, m); err != nil {
		l.Warn("mail send failed", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
	}
}
