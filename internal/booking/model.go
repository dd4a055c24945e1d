package booking

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned for bookings that do not exist or belong to someone else.
	ErrNotFound = errors.New("booking not found")
	// ErrNotCancellable is returned when cancelling a completed or cancelled booking.
	ErrNotCancellable = errors.New("booking can no longer be cancelled")
	// ErrInvalidTab is returned for unknown list tabs.
	ErrInvalidTab = errors.New("tab must be active or history")
	// ErrUnavailable is returned when booking an inactive service or maid.
	ErrUnavailable = errors.New("service or maid is not currently available")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Tab groups statuses the way the bookings screen does.
type Tab string

const (
	TabActive  Tab = "active"
	TabHistory Tab = "history"
)

// Statuses returns the statuses shown under t.
func (t Tab) Statuses() ([]Status, error) {
	switch t {
	case TabActive, "":
		return []Status{StatusPending, StatusConfirmed}, nil
	case TabHistory, "past":
		return []Status{StatusCompleted, StatusCancelled}, nil
	default:
		return nil, ErrInvalidTab
	}
}

// Booking is a confirmed booking request.
type Booking struct {
	ID         string
	UserID     string
	ServiceID  string
	MaidID     string
	Date       string
	Time       string
	Duration   int
	Address    string
	Status     Status
	CouponCode string
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// Input is the booking wizard's final selection.
type Input struct {
	UserID    string
	ServiceID string
	MaidID    string
	Date      string
	Time      string
	Duration  int
	Address   string
	Coupon    string
	// Contact is where the confirmation goes: a phone number or email.
	Contact string
}

// ServiceSummary is the part of a service shown on a booking card.
type ServiceSummary struct {
	Name  string
	Image string
	Price decimal.Decimal
}

// MaidSummary is the part of a maid shown on a booking card.
type MaidSummary struct {
	Name   string
	Image  string
	Rating float64
}

// View is a booking with its service and maid resolved.
type View struct {
	Booking
	Service *ServiceSummary
	Maid    *MaidSummary
}
