package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/internal/config"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/wizard"
)

func newAuthFixture(t *testing.T) *authService {
	t.Helper()
	uow := unitofwork.NewRepositoryFactory(newTestDB(t))
	svc := NewAuthService(uow, config.AuthConfig{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		GoogleClientID: "client-id",
	}, logger.NewNopLogger())
	return svc.(*authService)
}

func TestAuthUpsertLinksExistingEmail(t *testing.T) {
	s := newAuthFixture(t)
	ctx := context.Background()

	first, err := s.upsertUser(ctx, &googleUser{ID: "g-1", Email: "Ana@Example.com", VerifiedEmail: true, Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", first.Email)

	// Same person, new Google id: matched by email and relinked.
	second, err := s.upsertUser(ctx, &googleUser{ID: "g-2", Email: "ana@example.com", VerifiedEmail: true, Picture: "https://img"})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	require.NotNil(t, second.GoogleId)
	assert.Equal(t, "g-2", *second.GoogleId)
	assert.Equal(t, "Ana", second.FullName)

	me, err := s.Me(ctx, first.Id)
	require.NoError(t, err)
	require.NotNil(t, me.AvatarURL)
	assert.Equal(t, "https://img", *me.AvatarURL)
}

func TestAuthIssueTokenCarriesIdentity(t *testing.T) {
	s := newAuthFixture(t)
	user, err := s.upsertUser(context.Background(), &googleUser{ID: "g-1", Email: "ana@example.com", VerifiedEmail: true, Name: "Ana"})
	require.NoError(t, err)

	signed, err := s.issueToken(user)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.Id.String(), claims["user_id"])
	assert.Equal(t, "ana@example.com", claims["email"])
	assert.Equal(t, "Ana", claims["name"])
}

func TestAuthFetchProfile(t *testing.T) {
	s := newAuthFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/verified":
			fmt.Fprint(w, `{"id":"g-1","email":"ana@example.com","verified_email":true,"name":"Ana"}`)
		case "/unverified":
			fmt.Fprint(w, `{"id":"g-1","email":"ana@example.com","verified_email":false}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	s.userInfoURL = srv.URL + "/verified"
	profile, err := s.fetchProfile(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)

	s.userInfoURL = srv.URL + "/unverified"
	_, err = s.fetchProfile(context.Background(), srv.Client())
	assert.ErrorIs(t, err, wizard.ErrUnauthenticated)

	s.userInfoURL = srv.URL + "/revoked"
	_, err = s.fetchProfile(context.Background(), srv.Client())
	assert.ErrorIs(t, err, wizard.ErrUpstreamUnavailable)
}

func TestAuthLoginURL(t *testing.T) {
	s := newAuthFixture(t)
	res, err := s.GetLoginURL()
	require.NoError(t, err)
	assert.Contains(t, res.URL, "client_id=client-id")
	assert.Contains(t, res.URL, "state=")
	assert.NotEmpty(t, res.State)

	s.googleConf.ClientID = ""
	_, err = s.GetLoginURL()
	assert.ErrorIs(t, err, wizard.ErrUpstreamUnavailable)
}
