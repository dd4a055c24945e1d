package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/auth"
)

// GoogleSignIn is the consent and code exchange side of Google sign-in.
type GoogleSignIn interface {
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (auth.GoogleUser, error)
}

// Handler exposes sign-in and profile endpoints.
type Handler struct {
	service  *Service
	tokens   *auth.Tokens
	google   GoogleSignIn
	states   auth.StateStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler constructs an identity HTTP handler. google may be nil when Google
// sign-in is not configured.
func NewHandler(service *Service, tokens *auth.Tokens, google GoogleSignIn, states auth.StateStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, google: google, states: states, validate: validator.New(), logger: logger}
}

type requestCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type verifyCodeRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

type createProfileRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
}

type updateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Pincode   *string `json:"pincode" validate:"omitempty,numeric,len=6"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type sessionResponse struct {
	Success      bool       `json:"success"`
	UserExists   bool       `json:"user_exists"`
	NeedsProfile bool       `json:"needs_profile"`
	AccessToken  string     `json:"access_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Session      *Session   `json:"session,omitempty"`
	Error        string     `json:"error,omitempty"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Pincode   string    `json:"pincode,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address, City: p.City,
		Pincode: p.Pincode, AvatarURL: p.AvatarURL, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *Handler) flow(c *fiber.Ctx) (*Flow, error) {
	device, _ := c.Locals("device_id").(string)
	if device == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "missing device id")
	}
	return h.service.Flow(device), nil
}

// signedIn wraps session with a fresh access token.
func (h *Handler) signedIn(c *fiber.Ctx, session Session, existed bool) error {
	token, exp, err := h.tokens.Issue(session.ProfileID, session.ID, session.DeviceID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{
		Success: true, UserExists: existed, AccessToken: token, ExpiresAt: &exp, Session: &session,
	})
}

// soft reports a store failure as an unsuccessful result rather than an error status.
func (h *Handler) soft(c *fiber.Ctx, op string, err error) error {
	h.logger.Error(op+" failed", slog.Any("error", err))
	return c.Status(http.StatusOK).JSON(sessionResponse{Success: false, Error: "something went wrong, please try again"})
}

// RequestCode starts sign-in for an identifier.
func (h *Handler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	flow, err := h.flow(c)
	if err != nil {
		return err
	}
	ok, err := flow.RequestCode(c.UserContext(), req.Identifier)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidIdentifier):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrResendTooSoon):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		default:
			return h.soft(c, "request code", err)
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": ok})
}

// VerifyCode checks the code for the pending identifier.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	flow, err := h.flow(c)
	if err != nil {
		return err
	}
	result, err := flow.VerifyCode(c.UserContext(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPendingIdentifier):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrTooManyAttempts):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrCodeMismatch), errors.Is(err, ErrCodeExpired):
			return c.Status(http.StatusOK).JSON(sessionResponse{Success: false, Error: err.Error()})
		default:
			return h.soft(c, "verify code", err)
		}
	}
	if !result.Existed {
		return c.Status(http.StatusOK).JSON(sessionResponse{Success: true, NeedsProfile: true})
	}
	return h.signedIn(c, *result.Session, true)
}

// CreateProfile registers a verified new identifier.
func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var req createProfileRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	flow, err := h.flow(c)
	if err != nil {
		return err
	}
	session, err := flow.CreateProfile(c.UserContext(), ProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPendingIdentifier), errors.Is(err, ErrNotVerified):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNameRequired):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return h.soft(c, "create profile", err)
		}
	}
	return h.signedIn(c, session, false)
}

// authenticated reports whether the request carried a token for the device's
// current session. SessionAuth or OptionalSession put it in the "session" local.
func authenticated(c *fiber.Ctx) (Session, bool) {
	session, ok := c.Locals("session").(Session)
	return session, ok
}

// SignOut ends the device session. A signed-in device must present its token;
// one that is mid sign-in may abandon it freely.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	flow, err := h.flow(c)
	if err != nil {
		return err
	}
	if _, ok := authenticated(c); !ok {
		state, err := flow.State(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if state == StateAuthenticated {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
	}
	if err := flow.SignOut(c.UserContext()); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// Session reports the sign-in state of the device. Session details are only
// returned to the holder of the session's token.
func (h *Handler) Session(c *fiber.Ctx) error {
	flow, err := h.flow(c)
	if err != nil {
		return err
	}
	state, err := flow.State(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	resp := fiber.Map{"state": state}
	if session, ok := authenticated(c); ok && state == StateAuthenticated {
		resp["session"] = session
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// GoogleStart returns the consent URL for the device.
func (h *Handler) GoogleStart(c *fiber.Ctx) error {
	if h.google == nil {
		return fiber.NewError(http.StatusNotImplemented, auth.ErrGoogleDisabled.Error())
	}
	device, _ := c.Locals("device_id").(string)
	if device == "" {
		return fiber.NewError(http.StatusBadRequest, "missing device id")
	}
	state, err := h.states.Issue(c.UserContext(), device)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	url, err := h.google.AuthURL(state)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"url": url, "state": state})
}

// GoogleCallback completes the consent round-trip and signs the originating device in.
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if h.google == nil {
		return fiber.NewError(http.StatusNotImplemented, auth.ErrGoogleDisabled.Error())
	}
	device, err := h.states.Consume(c.UserContext(), c.Query("state"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.google.Exchange(c.UserContext(), c.Query("code"))
	if errors.Is(err, auth.ErrEmailUnverified) {
		return fiber.NewError(http.StatusForbidden, err.Error())
	}
	if err != nil {
		h.logger.Warn("google exchange failed", slog.Any("error", err))
		return fiber.NewError(http.StatusUnauthorized, "google sign-in failed")
	}
	result, err := h.service.Flow(device).SignInWithGoogle(c.UserContext(), ExternalAccount{
		Email: user.Email, Name: user.Name, AvatarURL: user.Picture,
	})
	if err != nil {
		return h.soft(c, "google sign-in", err)
	}
	return h.signedIn(c, *result.Session, result.Existed)
}

// Me returns the signed-in profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.service.Profile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toProfileResponse(profile))
}

// UpdateMe edits the signed-in profile.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.service.UpdateProfile(c.UserContext(), userID, ProfileUpdate{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address,
		City: req.City, Pincode: req.Pincode, AvatarURL: req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrProfileExists):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNameRequired):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(toProfileResponse(profile))
}
