package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var (
	// ErrGoogleDisabled is returned when no Google client credentials are configured.
	ErrGoogleDisabled = errors.New("google sign-in is not configured")
	// ErrEmailUnverified is returned for Google accounts whose email Google has not verified.
	// Such an address must not be matched against existing profiles.
	ErrEmailUnverified = errors.New("google account email is not verified")
)

// GoogleUser is the subset of the userinfo response used to find or create a profile.
type GoogleUser struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider drives the authorization-code flow against Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns nil when clientID or clientSecret is empty.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthURL is the consent page the device should open for state.
func (p *GoogleProvider) AuthURL(state string) (string, error) {
	if p == nil {
		return "", ErrGoogleDisabled
	}
	return p.config.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for the signed-in Google account.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (GoogleUser, error) {
	if p == nil {
		return GoogleUser{}, ErrGoogleDisabled
	}
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return GoogleUser{}, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("fetch google user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleUser{}, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return GoogleUser{}, fmt.Errorf("decode google user: %w", err)
	}
	if user.Email == "" {
		return GoogleUser{}, errors.New("google account has no email")
	}
	if !user.EmailVerified {
		return GoogleUser{}, ErrEmailUnverified
	}
	return user, nil
}
