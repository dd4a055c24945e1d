package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/homehelp/homehelp/internal/catalog"
	"github.com/homehelp/homehelp/internal/metrics"
	"github.com/homehelp/homehelp/internal/notification"
	"github.com/homehelp/homehelp/internal/pricing"
)

// Service creates, lists and cancels bookings.
type Service struct {
	repo     Repository
	catalog  *catalog.Catalog
	pricing  *pricing.Calculator
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService wires the booking service.
func NewService(repo Repository, cat *catalog.Catalog, calc *pricing.Calculator, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: cat, pricing: calc, notifier: notifier, logger: logger}
}

// Create prices and records a pending booking. An unknown coupon fails the
// booking instead of silently dropping the discount.
func (s *Service) Create(ctx context.Context, in Input) (Booking, error) {
	svc, err := s.catalog.Service(ctx, in.ServiceID)
	if err != nil {
		return Booking{}, err
	}
	if !svc.IsActive {
		return Booking{}, fmt.Errorf("%w: %s", ErrUnavailable, svc.Name)
	}
	if in.MaidID != "" {
		maid, err := s.catalog.Maid(ctx, in.MaidID)
		if err != nil {
			return Booking{}, err
		}
		if !maid.IsActive {
			return Booking{}, fmt.Errorf("%w: %s", ErrUnavailable, maid.Name)
		}
	}

	quote, err := s.pricing.Quote(svc.Name, in.Duration, in.Coupon)
	if err != nil {
		return Booking{}, err
	}

	created, err := s.repo.Create(ctx, Booking{
		UserID:     in.UserID,
		ServiceID:  svc.ID,
		MaidID:     in.MaidID,
		Date:       in.Date,
		Time:       in.Time,
		Duration:   in.Duration,
		Address:    in.Address,
		Status:     StatusPending,
		CouponCode: quote.Coupon,
		TotalPrice: quote.Total,
	})
	if err != nil {
		return Booking{}, err
	}
	metrics.BookingsCreated.Inc()

	s.notify(ctx, in.Contact, notification.Message{
		Kind:    notification.KindBookingCreated,
		Subject: "Your HomeHelp booking",
		Body:    fmt.Sprintf("%s booked for %s at %s. Total ₹%s.", svc.Name, created.Date, created.Time, created.TotalPrice.StringFixed(0)),
	})
	return created, nil
}

// List returns the user's bookings under tab, newest first, with service and
// maid details resolved.
func (s *Service) List(ctx context.Context, userID string, tab Tab) ([]View, error) {
	statuses, err := tab.Statuses()
	if err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListByUser(ctx, userID, statuses)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(bookings))
	for _, b := range bookings {
		v := View{Booking: b}
		if svc, err := s.catalog.Service(ctx, b.ServiceID); err == nil {
			v.Service = &ServiceSummary{Name: svc.Name, Image: svc.Image, Price: svc.Price}
		} else if !errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, err
		}
		if b.MaidID != "" {
			if m, err := s.catalog.Maid(ctx, b.MaidID); err == nil {
				v.Maid = &MaidSummary{Name: m.Name, Image: m.Image, Rating: m.Rating}
			} else if !errors.Is(err, catalog.ErrMaidNotFound) {
				return nil, err
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// Cancel cancels a pending or confirmed booking owned by userID.
func (s *Service) Cancel(ctx context.Context, userID, id, contact string) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotFound
	}
	if err := s.repo.Transition(ctx, id, []Status{StatusPending, StatusConfirmed}, StatusCancelled); err != nil {
		return err
	}
	s.notify(ctx, contact, notification.Message{
		Kind:    notification.KindBookingCancelled,
		Subject: "Booking cancelled",
		Body:    fmt.Sprintf("Your booking for %s at %s has been cancelled.", b.Date, b.Time),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, contact string, msg notification.Message) {
	if s.notifier == nil || contact == "" {
		return
	}
	msg.Destination = contact
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("booking notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
	}
}
