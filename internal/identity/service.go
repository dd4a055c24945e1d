// Package identity resolves a phone number or email plus a one-time code into a
// session for an existing profile or into a request to register one.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homehelp/homehelp/internal/metrics"
	"github.com/homehelp/homehelp/internal/notification"
)

// Service wires the collaborators shared by every device's Flow.
type Service struct {
	repo        Repository
	codes       CodeIssuer
	notifier    notification.Notifier
	sessions    SessionStore
	pending     PendingStore
	countryCode string
	logger      *slog.Logger
}

// Options collects Service dependencies.
type Options struct {
	Repository  Repository
	Codes       CodeIssuer
	Notifier    notification.Notifier
	Sessions    SessionStore
	Pending     PendingStore
	CountryCode string
	Logger      *slog.Logger
}

// NewService creates a new identity service. Missing stores fall back to memory.
func NewService(opts Options) *Service {
	s := &Service{
		repo:        opts.Repository,
		codes:       opts.Codes,
		notifier:    opts.Notifier,
		sessions:    opts.Sessions,
		pending:     opts.Pending,
		countryCode: opts.CountryCode,
		logger:      opts.Logger,
	}
	if s.codes == nil {
		s.codes = StaticCodes{}
	}
	if s.sessions == nil {
		s.sessions = NewMemorySessionStore()
	}
	if s.pending == nil {
		s.pending = NewMemoryPendingStore()
	}
	if s.countryCode == "" {
		s.countryCode = "+91"
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Flow returns the sign-in flow of one device.
func (s *Service) Flow(deviceID string) *Flow {
	return &Flow{svc: s, deviceID: deviceID}
}

// Profile fetches a profile by id.
func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies update to the profile with id and bumps updated_at.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&profile.Name, update.Name)
	apply(&profile.Email, update.Email)
	apply(&profile.Phone, update.Phone)
	apply(&profile.Address, update.Address)
	apply(&profile.City, update.City)
	apply(&profile.Pincode, update.Pincode)
	apply(&profile.AvatarURL, update.AvatarURL)
	if profile.Name == "" {
		return Profile{}, ErrNameRequired
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Flow is the sign-in state machine of a single device. All state lives in
// the Service stores, so a Flow is cheap to build per request.
type Flow struct {
	svc      *Service
	deviceID string
}

// State reports where the device stands.
func (f *Flow) State(ctx context.Context) (State, error) {
	if _, err := f.svc.sessions.Get(ctx, f.deviceID); err == nil {
		return StateAuthenticated, nil
	} else if !errors.Is(err, ErrNoSession) {
		return "", err
	}

	pending, err := f.svc.pending.Get(ctx, f.deviceID)
	if errors.Is(err, ErrNoPendingIdentifier) {
		return StateUnauthenticated, nil
	}
	if err != nil {
		return "", err
	}
	if pending.Verified {
		return StateVerifiedNew, nil
	}
	return StateCodeRequested, nil
}

// Session returns the current session of the device.
func (f *Flow) Session(ctx context.Context) (Session, error) {
	return f.svc.sessions.Get(ctx, f.deviceID)
}

// Pending returns the identifier awaiting verification or registration.
func (f *Flow) Pending(ctx context.Context) (Pending, error) {
	return f.svc.pending.Get(ctx, f.deviceID)
}

// RequestCode stores raw as the pending identifier and sends it a code.
func (f *Flow) RequestCode(ctx context.Context, raw string) (bool, error) {
	id, err := ParseIdentifier(raw, f.svc.countryCode)
	if err != nil {
		return false, err
	}

	code, err := f.svc.codes.Issue(ctx, id.Value)
	if err != nil {
		return false, err
	}

	if f.svc.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindLoginCode,
			Destination: id.Value,
			Subject:     "Your HomeHelp sign-in code",
			Body:        fmt.Sprintf("Your HomeHelp verification code is %s", code),
		}
		if err := f.svc.notifier.Send(ctx, msg); err != nil {
			return false, fmt.Errorf("deliver code: %w", err)
		}
	}
	metrics.CodesIssued.WithLabelValues(string(id.Kind)).Inc()

	pending := Pending{Identifier: strings.TrimSpace(raw), RequestedAt: time.Now().UTC()}
	if err := f.svc.pending.Put(ctx, f.deviceID, pending); err != nil {
		return false, fmt.Errorf("store pending identifier: %w", err)
	}
	return true, nil
}

// VerifyCode checks code against the pending identifier. A rejected code leaves
// the pending identifier in place for a retry. An accepted code either signs the
// device in to the matching profile or marks the identifier verified so that
// CreateProfile may run.
func (f *Flow) VerifyCode(ctx context.Context, code string) (VerifyResult, error) {
	pending, err := f.svc.pending.Get(ctx, f.deviceID)
	if err != nil {
		return VerifyResult{}, err
	}
	id, err := ParseIdentifier(pending.Identifier, f.svc.countryCode)
	if err != nil {
		return VerifyResult{}, err
	}

	if err := f.svc.codes.Check(ctx, id.Value, strings.TrimSpace(code)); err != nil {
		metrics.CodeVerifications.WithLabelValues("rejected").Inc()
		return VerifyResult{}, err
	}
	metrics.CodeVerifications.WithLabelValues("accepted").Inc()

	profile, err := f.svc.lookup(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		pending.Verified = true
		if err := f.svc.pending.Put(ctx, f.deviceID, pending); err != nil {
			return VerifyResult{}, fmt.Errorf("store pending identifier: %w", err)
		}
		return VerifyResult{Existed: false}, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("lookup profile: %w", err)
	}

	session, err := f.establish(ctx, profile)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Existed: true, Session: &session}, nil
}

// CreateProfile registers the verified pending identifier and signs the device in.
func (f *Flow) CreateProfile(ctx context.Context, input ProfileInput) (Session, error) {
	pending, err := f.svc.pending.Get(ctx, f.deviceID)
	if err != nil {
		return Session{}, err
	}
	if !pending.Verified {
		return Session{}, ErrNotVerified
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Session{}, ErrNameRequired
	}
	id, err := ParseIdentifier(pending.Identifier, f.svc.countryCode)
	if err != nil {
		return Session{}, err
	}

	profile := Profile{Name: name}
	switch id.Kind {
	case KindEmail:
		profile.Email = id.Value
	default:
		profile.Phone = id.Value
		profile.Email = strings.TrimSpace(input.Email)
	}

	created, err := f.svc.repo.Create(ctx, profile)
	if err != nil {
		return Session{}, fmt.Errorf("create profile: %w", err)
	}
	return f.establish(ctx, created)
}

// SignInWithGoogle signs the device in to the profile owning account.Email,
// registering one first when none exists. Existed reports which happened.
func (f *Flow) SignInWithGoogle(ctx context.Context, account ExternalAccount) (VerifyResult, error) {
	email := strings.TrimSpace(account.Email)
	if email == "" {
		return VerifyResult{}, ErrInvalidIdentifier
	}

	existed := true
	profile, err := f.svc.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrProfileNotFound) {
		existed = false
		name := strings.TrimSpace(account.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		profile, err = f.svc.repo.Create(ctx, Profile{Name: name, Email: email, AvatarURL: account.AvatarURL})
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("resolve google profile: %w", err)
	}
	session, err := f.establish(ctx, profile)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Existed: existed, Session: &session}, nil
}

// SignOut clears the session and any pending identifier.
func (f *Flow) SignOut(ctx context.Context) error {
	if err := f.svc.sessions.Delete(ctx, f.deviceID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := f.svc.pending.Delete(ctx, f.deviceID); err != nil {
		return fmt.Errorf("clear pending identifier: %w", err)
	}
	return nil
}

func (f *Flow) establish(ctx context.Context, profile Profile) (Session, error) {
	session := Session{
		ID:          uuid.NewString(),
		ProfileID:   profile.ID,
		Email:       profile.Email,
		Phone:       profile.Phone,
		DisplayName: profile.Name,
		DeviceID:    f.deviceID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := f.svc.sessions.Put(ctx, f.deviceID, session); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	if err := f.svc.pending.Delete(ctx, f.deviceID); err != nil {
		f.svc.logger.Warn("failed to clear pending identifier", slog.String("device_id", f.deviceID), slog.Any("error", err))
	}
	return session, nil
}

// lookup uses exactly one strategy, chosen by the identifier's kind.
func (s *Service) lookup(ctx context.Context, id Identifier) (Profile, error) {
	if id.Kind == KindEmail {
		return s.repo.FindByEmail(ctx, id.Value)
	}
	return s.repo.FindByPhone(ctx, id.Value)
}
