// Package api is the HTTP client for the membervault server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yuwenwww/membervault/internal/common"
)

// ErrUnauthorized is returned on 401 responses: bad credentials on login,
// missing or expired token elsewhere.
var ErrUnauthorized = errors.New("unauthorized")

type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
	memberID    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type RegisterResult struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register creates an account. Email and phone are optional.
func (c *Client) Register(ctx context.Context, username, password string, email, phone *string) (*RegisterResult, error) {
	req := struct {
		Username    string  `json:"username"`
		Password    string  `json:"password"`
		Email       *string `json:"email,omitempty"`
		PhoneNumber *string `json:"phone_number,omitempty"`
	}{Username: username, Password: password, Email: email, PhoneNumber: phone}

	var result RegisterResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/members/register", req, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates and stores the access token and member ID on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var resp struct {
		AccessToken string `json:"access_token"`
		MemberID    string `json:"member_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/members/login", req, http.StatusOK, &resp); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.memberID = resp.MemberID
	return nil
}

// Logout drops the stored token.
func (c *Client) Logout() {
	c.accessToken = ""
	c.memberID = ""
}

// MemberID returns the member ID of the logged-in user, empty otherwise.
func (c *Client) MemberID() string {
	return c.memberID
}

// LoggedIn reports whether a token is stored.
func (c *Client) LoggedIn() bool {
	return c.accessToken != ""
}

// GetProfile fetches the decrypted profile of the given member. Requires a
// prior successful Login.
func (c *Client) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/members/"+id, nil, http.StatusOK, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		var er errorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			return fmt.Errorf("server: %s", er.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
