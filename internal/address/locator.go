package address

import (
	"context"
	"errors"
)

// ErrNoPosition is returned when the device reported no position.
var ErrNoPosition = errors.New("device reported no position")

// Locator is the device's location provider.
type Locator interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// ReportedLocator replays what the device sent with the request: whether the
// user granted location access and the position it sampled.
type ReportedLocator struct {
	Granted  bool
	Position *Coordinates
}

// RequestPermission reports the device's answer.
func (l ReportedLocator) RequestPermission(context.Context) (bool, error) {
	return l.Granted, nil
}

// CurrentPosition returns the reported position.
func (l ReportedLocator) CurrentPosition(context.Context) (Coordinates, error) {
	if l.Position == nil {
		return Coordinates{}, ErrNoPosition
	}
	return *l.Position, nil
}
