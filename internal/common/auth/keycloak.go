package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"laundry-workers/internal/common/errors"
	commonhttp "laundry-workers/internal/common/http"
)

// Realm roles checked by the HTTP functions. Operators are washers in this marketplace.
const (
	RoleAdmin    = "admin"
	RoleOperator = "washer"
)

// KeycloakClient validates caller tokens and manages accounts through the admin API.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *commonhttp.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenInfo is the introspection result. Sub is the caller's user id.
type TokenInfo struct {
	Active   bool   `json:"active"`
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Sub      string `json:"sub,omitempty"`

	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// HasAnyRole reports whether the caller holds at least one of roles.
func (t *TokenInfo) HasAnyRole(roles ...string) bool {
	for _, have := range t.RealmAccess.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string, httpClient *commonhttp.Client) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

func (k *KeycloakClient) getAccessToken(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && k.tokenExpiry.After(time.Now()) {
		return k.accessToken, nil
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("keycloak token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	k.accessToken = tokenResp.AccessToken
	// refresh a little early
	k.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - 10*time.Second)
	return k.accessToken, nil
}

// ValidateToken introspects a bearer token. Inactive or unverifiable tokens are authentication errors.
func (k *KeycloakClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	if token == "" {
		return nil, errors.NewAuthenticationError("missing bearer token")
	}

	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewAuthenticationError(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if k.isTransientHTTPError(resp.StatusCode) {
			return nil, errors.NewExternalServiceError("keycloak", fmt.Errorf("status %d: %s", resp.StatusCode, body))
		}
		return nil, errors.NewAuthenticationError(fmt.Sprintf("introspection status %d", resp.StatusCode))
	}

	var tokenInfo TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return nil, errors.NewAuthenticationError("malformed introspection response")
	}

	if !tokenInfo.Active || tokenInfo.Sub == "" {
		return nil, errors.NewAuthenticationError("token is not active")
	}

	return &tokenInfo, nil
}

// DisableUser marks the account disabled so the user can no longer sign in.
func (k *KeycloakClient) DisableUser(ctx context.Context, userID string) error {
	accessToken, err := k.getAccessToken(ctx)
	if err != nil {
		return errors.NewExternalServiceError("keycloak", err)
	}

	userURL := fmt.Sprintf("%s/admin/realms/%s/users/%s", k.baseURL, k.realm, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, userURL, strings.NewReader(`{"enabled":false}`))
	if err != nil {
		return errors.NewExternalServiceError("keycloak", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return errors.NewResourceNotFoundError("User", fmt.Sprintf("userId: %s", userID))
	default:
		body, _ := io.ReadAll(resp.Body)
		stdErr := errors.NewExternalServiceError("keycloak", fmt.Errorf("status %d: %s", resp.StatusCode, body))
		stdErr.Retryable = k.isTransientHTTPError(resp.StatusCode)
		return stdErr
	}
}

func (k *KeycloakClient) isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func transportError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError("keycloak", err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTimeoutError("keycloak", err)
	}
	return errors.NewExternalServiceError("keycloak", err)
}
