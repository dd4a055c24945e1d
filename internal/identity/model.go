package identity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidIdentifier is returned for blank identifiers.
	ErrInvalidIdentifier = errors.New("identifier must be a phone number or email")
	// ErrNoPendingIdentifier is returned when verify or create runs before a code was requested.
	ErrNoPendingIdentifier = errors.New("no pending identifier")
	// ErrNotVerified is returned by CreateProfile outside the verified-new state.
	ErrNotVerified = errors.New("identifier has not been verified")
	// ErrProfileNotFound is returned by lookups that match nothing.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when the identifier already belongs to a profile.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNoSession is returned when the device has no current session.
	ErrNoSession = errors.New("no active session")
	// ErrNameRequired is returned by CreateProfile without a display name.
	ErrNameRequired = errors.New("name is required")
)

// Kind tells phone identifiers from email identifiers.
type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
)

// Profile is the persisted record of one person.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	City      string
	Pincode   string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileInput carries the fields collected on the registration screen.
// Email is only used when the pending identifier is a phone number.
type ProfileInput struct {
	Name  string
	Email string
}

// ProfileUpdate is a partial edit; nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string
	Email     *string
	Phone     *string
	Address   *string
	City      *string
	Pincode   *string
	AvatarURL *string
}

// ExternalAccount is an identity asserted by an OAuth provider.
type ExternalAccount struct {
	Email     string
	Name      string
	AvatarURL string
}

// Session is the authenticated actor on one device.
type Session struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DisplayName string    `json:"display_name"`
	DeviceID    string    `json:"device_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pending is the identifier a device is signing in with.
type Pending struct {
	Identifier  string    `json:"identifier"`
	Verified    bool      `json:"verified"`
	RequestedAt time.Time `json:"requested_at"`
}

// State is where a device stands in the sign-in flow.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateCodeRequested   State = "code_requested"
	StateVerifiedNew     State = "verified_new"
	StateAuthenticated   State = "authenticated"
)

// VerifyResult reports the outcome of an accepted code.
type VerifyResult struct {
	Existed bool
	Session *Session
}
