package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"policygen/internal/config"
	"policygen/internal/dto"
	"policygen/internal/entity"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/specification"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/wizard"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type IAuthService interface {
	GetLoginURL() (*dto.LoginURLResponse, error)
	HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type authService struct {
	uowFactory  unitofwork.RepositoryFactory
	googleConf  *oauth2.Config
	userInfoURL string
	jwtSecret   []byte
	tokenTTL    time.Duration
	logger      logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, cfg config.AuthConfig, logger logger.ILogger) IAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	return &authService{
		uowFactory:  uowFactory,
		googleConf:  conf,
		userInfoURL: googleUserInfoURL,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    ttl,
		logger:      logger,
	}
}

func (s *authService) GetLoginURL() (*dto.LoginURLResponse, error) {
	if s.googleConf.ClientID == "" {
		return nil, fmt.Errorf("%w: google login is not configured", wizard.ErrUpstreamUnavailable)
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	state := base64.URLEncoding.EncodeToString(b)

	return &dto.LoginURLResponse{
		URL:   s.googleConf.AuthCodeURL(state),
		State: state,
	}, nil
}

// HandleCallback exchanges the code, finds or creates the user and issues
// an access token.
func (s *authService) HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("AUTH", "Code exchange failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: code exchange failed", wizard.ErrUnauthenticated)
	}

	profile, err := s.fetchProfile(ctx, s.googleConf.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	user, err := s.upsertUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", "User logged in", map[string]interface{}{
		"user_id": user.Id.String(),
	})

	return &dto.LoginResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) fetchProfile(ctx context.Context, client *http.Client) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed getting user info: %v", wizard.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user info returned %d", wizard.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var profile googleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: failed to parse user info: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		return nil, fmt.Errorf("%w: google account has no verified email", wizard.ErrUnauthenticated)
	}
	return &profile, nil
}

// upsertUser matches by Google id first, then by email, linking the Google
// id to an account that was created before.
func (s *authService) upsertUser(ctx context.Context, profile *googleUser) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByGoogleID{GoogleID: profile.ID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if user == nil {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: strings.ToLower(profile.Email)})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
		}
	}

	var avatar *string
	if profile.Picture != "" {
		avatar = &profile.Picture
	}
	googleID := profile.ID

	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Email:     strings.ToLower(profile.Email),
			FullName:  profile.Name,
			AvatarURL: avatar,
			GoogleId:  &googleID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
		}
		return user, nil
	}

	user.GoogleId = &googleID
	if user.FullName == "" {
		user.FullName = profile.Name
	}
	if avatar != nil {
		user.AvatarURL = avatar
	}
	user.UpdatedAt = time.Now()
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", fmt.Errorf("%w: JWT_SECRET is not set", wizard.ErrUpstreamUnavailable)
	}
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"name":    user.FullName,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", wizard.ErrUnauthenticated)
	}
	res := toUserResponse(user)
	return &res, nil
}

func toUserResponse(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}
