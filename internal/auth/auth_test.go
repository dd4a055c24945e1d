package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	signed, exp, err := tokens.Issue("profile-1", "session-1", "device-1")
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "profile-1", claims.Subject)
	require.Equal(t, "session-1", claims.SessionID)
	require.Equal(t, "device-1", claims.DeviceID)
}

func TestTokensRejectWrongSecretAndExpiry(t *testing.T) {
	signed, _, err := NewTokens("secret", time.Hour).Issue("p", "s", "d")
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.Issue("p", "s", "d")
	require.NoError(t, err)
	_, err = NewTokens("secret", time.Minute).Parse(old)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedisStateStoreIsSingleUse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStateStore(client)
	ctx := context.Background()

	state, err := store.Issue(ctx, "device-1")
	require.NoError(t, err)

	device, err := store.Consume(ctx, state)
	require.NoError(t, err)
	require.Equal(t, "device-1", device)

	_, err = store.Consume(ctx, state)
	require.ErrorIs(t, err, ErrUnknownState)
}

func TestRedisStateStoreExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStateStore(client)
	state, err := store.Issue(context.Background(), "device-1")
	require.NoError(t, err)

	mr.FastForward(StateTTL + time.Second)
	_, err = store.Consume(context.Background(), state)
	require.ErrorIs(t, err, ErrUnknownState)
}

func TestGoogleProviderDisabledWithoutCredentials(t *testing.T) {
	p := NewGoogleProvider("", "", "")
	require.Nil(t, p)
	_, err := p.AuthURL("state")
	require.ErrorIs(t, err, ErrGoogleDisabled)
}

func googleTestProvider(t *testing.T, user GoogleUser) *GoogleProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGoogleProvider("client", "secret", "https://app/callback")
	p.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	p.userInfoURL = srv.URL + "/userinfo"
	return p
}

func TestGoogleProviderExchange(t *testing.T) {
	p := googleTestProvider(t, GoogleUser{Subject: "g-1", Email: "asha@example.com", EmailVerified: true, Name: "Asha", Picture: "https://img/a.png"})

	authURL, err := p.AuthURL("xyz")
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	require.Equal(t, "xyz", u.Query().Get("state"))

	user, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)
	require.Equal(t, "Asha", user.Name)
}

func TestGoogleProviderRejectsUnverifiedEmail(t *testing.T) {
	p := googleTestProvider(t, GoogleUser{Subject: "g-2", Email: "victim@example.com", EmailVerified: false, Name: "Mallory"})

	_, err := p.Exchange(context.Background(), "code-2")
	require.ErrorIs(t, err, ErrEmailUnverified)
}
