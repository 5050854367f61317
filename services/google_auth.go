// services/google_auth.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleAuthService exchanges OAuth authorization codes with Google and
// bootstraps local accounts from the returned profile.
type GoogleAuthService struct {
	clientID     string
	clientSecret string
	redirectURL  string
	tokenURL     string
	userInfoURL  string
	httpClient   *http.Client
	users        repositories.UserStore
}

// NewGoogleAuthService creates a new Google auth service instance
func NewGoogleAuthService(users repositories.UserStore) *GoogleAuthService {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" {
		log.Printf("WARNING: Google OAuth credentials not fully configured:")
		if clientID == "" {
			log.Printf("  - GOOGLE_CLIENT_ID is missing")
		}
		if clientSecret == "" {
			log.Printf("  - GOOGLE_CLIENT_SECRET is missing")
		}
		log.Printf("Please set these environment variables for Google sign-in to work")
	}

	return &GoogleAuthService{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		users:        users,
	}
}

// SetEndpoints overrides the Google endpoints. Used by tests.
func (s *GoogleAuthService) SetEndpoints(tokenURL, userInfoURL string) {
	s.tokenURL = tokenURL
	s.userInfoURL = userInfoURL
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleCallback exchanges the authorization code for a Google profile and
// returns the matching local account, creating a client account on first
// sign-in. Suspended accounts are rejected.
func (s *GoogleAuthService) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, NewValidationError("authorization code is required")
	}
	if s.clientID == "" || s.clientSecret == "" {
		return nil, NewDependencyError("google oauth",
			fmt.Errorf("missing Google credentials. Please set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables"))
	}

	token, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	info, err := s.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, NewDependencyError("google oauth", fmt.Errorf("google profile has no email"))
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(info.Email))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, NewDependencyError("find account", err)
		}
		// First sign-in: bootstrap a client account. Vendors and the
		// manager are provisioned through the regular signup flow.
		user = &models.User{
			Email:      strings.ToLower(info.Email),
			FullName:   info.Name,
			UserType:   models.RoleClient,
			Status:     models.UserStatusActive,
			GoogleID:   info.ID,
			ProfilePic: info.Picture,
		}
		if err := s.users.Insert(ctx, user); err != nil {
			if repositories.IsDuplicateKey(err) {
				// Lost a race with a concurrent first sign-in.
				user, err = s.users.FindByEmail(ctx, strings.ToLower(info.Email))
				if err != nil {
					return nil, NewDependencyError("find account", err)
				}
			} else {
				return nil, NewDependencyError("create account", err)
			}
		}
	}

	if user.Status == models.UserStatusSuspended {
		return nil, ErrForbidden
	}

	return user, nil
}

func (s *GoogleAuthService) exchangeCode(ctx context.Context, code string) (*googleTokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("redirect_uri", s.redirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewDependencyError("google token exchange", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewDependencyError("google token exchange", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDependencyError("google token exchange", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewDependencyError("google token exchange",
			fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var token googleTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, NewDependencyError("google token exchange", err)
	}
	if token.AccessToken == "" {
		return nil, NewDependencyError("google token exchange", fmt.Errorf("no access token in response"))
	}
	return &token, nil
}

func (s *GoogleAuthService) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, NewDependencyError("google userinfo", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewDependencyError("google userinfo", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDependencyError("google userinfo", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewDependencyError("google userinfo",
			fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, NewDependencyError("google userinfo", err)
	}
	return &info, nil
}
