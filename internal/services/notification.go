package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/pkg/sendgrid"
)

// NotificationService delivers transactional email off the request path.
// Enqueue never blocks; when the queue is full the message is dropped and
// logged, an email is not worth failing a checkout over.
type NotificationService interface {
	Enqueue(msg *models.EmailMessage) bool
	SendWelcome(email, name string)
	SendOrderConfirmation(email, name string, order *models.Order)
	SendPasswordReset(email, name, resetURL string)
	Stop()
}

type notificationService struct {
	emailService sendgrid.EmailService
	queue        chan *models.EmailMessage
	wg           sync.WaitGroup
	stopOnce     sync.Once
}

const (
	notificationWorkers   = 4
	notificationQueueSize = 256
	sendTimeout           = 10 * time.Second
)

func NewNotificationService(emailService sendgrid.EmailService) NotificationService {

	s := &notificationService{
		emailService: emailService,
		queue:        make(chan *models.EmailMessage, notificationQueueSize),
	}

	for range notificationWorkers {
		s.wg.Add(1)

		go s.worker()
	}

	return s
}

func (s *notificationService) worker() {

	defer s.wg.Done()

	for msg := range s.queue {

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)

		if err := s.emailService.Send(ctx, msg); err != nil {
			slog.Error("failed to send email", slog.String("to", msg.To), slog.String("subject", msg.Subject), slog.Any("error", err))
		}

		cancel()
	}
}

func (s *notificationService) Enqueue(msg *models.EmailMessage) bool {

	select {
	case s.queue <- msg:
		return true
	default:
		slog.Warn("notification queue full, dropping email", slog.String("to", msg.To), slog.String("subject", msg.Subject))

		return false
	}
}

func (s *notificationService) SendWelcome(email, name string) {

	s.Enqueue(&models.EmailMessage{
		To:        email,
		ToName:    name,
		Subject:   "Welcome to Storefront",
		PlainText: fmt.Sprintf("Hi %s,\n\nThanks for creating an account. Happy shopping!\n", name),
	})
}

func (s *notificationService) SendOrderConfirmation(email, name string, order *models.Order) {

	s.Enqueue(&models.EmailMessage{
		To:     email,
		ToName: name,
		Subject: fmt.Sprintf("Order #%d confirmed", order.ID),
		PlainText: fmt.Sprintf("Hi %s,\n\nWe received your order #%d for a total of %.2f. We will let you know when it ships.\n",
			name, order.ID, order.TotalAmount),
	})
}

func (s *notificationService) SendPasswordReset(email, name, resetURL string) {

	s.Enqueue(&models.EmailMessage{
		To:        email,
		ToName:    name,
		Subject:   "Reset your password",
		PlainText: fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. The link expires shortly.\n\n%s\n", name, resetURL),
		HTML:      fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Reset your password</a>. The link expires shortly.</p>`, name, resetURL),
	})
}

// Stop closes the queue and waits for in-flight sends to finish.
func (s *notificationService) Stop() {

	s.stopOnce.Do(func() {
		close(s.queue)
	})

	s.wg.Wait()
}
