package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginAndProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/members/register":
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "alice", req["username"])
			require.Equal(t, "a@example.com", req["email"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "m-1", "username": "alice"})
		case "/api/members/login":
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1", "member_id": "m-1"})
		case "/api/members/m-1":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id": "m-1", "username": "alice", "email": "a@example.com", "phone_number": "555-1234",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	email := "a@example.com"
	result, err := c.Register(ctx, "alice", "hunter2", &email, nil)
	require.NoError(t, err)
	require.Equal(t, "m-1", result.ID)

	require.False(t, c.LoggedIn())
	require.NoError(t, c.Login(ctx, "alice", "hunter2"))
	require.True(t, c.LoggedIn())
	require.Equal(t, "m-1", c.MemberID())

	profile, err := c.GetProfile(ctx, c.MemberID())
	require.NoError(t, err)
	require.Equal(t, "a@example.com", profile.Email)
	require.Equal(t, "555-1234", profile.PhoneNumber)

	c.Logout()
	require.False(t, c.LoggedIn())
	require.Empty(t, c.MemberID())
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, c.LoggedIn())
}

func TestRegister_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "username already exists"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), "alice", "pw", nil, nil)
	require.ErrorContains(t, err, "username already exists")
}
