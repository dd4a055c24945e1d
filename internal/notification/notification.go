package notification

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// KindLoginCode carries a one-time sign-in code.
	KindLoginCode = "login_code"
	// KindBookingCreated confirms a new booking request.
	KindBookingCreated = "booking_created"
	// KindBookingCancelled confirms a cancellation.
	KindBookingCancelled = "booking_cancelled"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger. It stands in for an SMS
// gateway and for email when SES is not configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("body", message.Body),
	)
	return nil
}

// Router sends email destinations through Email and everything else through SMS.
type Router struct {
	SMS   Notifier
	Email Notifier
}

// Send dispatches message by the shape of its destination.
func (r Router) Send(ctx context.Context, message Message) error {
	target := r.SMS
	if strings.Contains(message.Destination, "@") {
		target = r.Email
	}
	if target == nil {
		return nil
	}
	return target.Send(ctx, message)
}
