package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"testing"

	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	rl "github.com/rogerio-castellano/stock-notifier/internal/http/rate_limiter"
)

func TestRegisterHandler(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name     string
		creds    handler.CredentialsRequest
		wantCode int
	}{
		{"valid", handler.CredentialsRequest{Username: "carol", Password: "hunter22", Contact: "+447700900123"}, http.StatusCreated},
		{"duplicate username", handler.CredentialsRequest{Username: "admin", Password: "hunter22", Contact: "+15550102"}, http.StatusConflict},
		{"missing password", handler.CredentialsRequest{Username: "dave", Contact: "+15550103"}, http.StatusBadRequest},
		{"short username", handler.CredentialsRequest{Username: "ed", Password: "hunter22", Contact: "+15550104"}, http.StatusBadRequest},
		{"contact without plus", handler.CredentialsRequest{Username: "frank", Password: "hunter22", Contact: "15550105"}, http.StatusBadRequest},
		{"missing contact", handler.CredentialsRequest{Username: "gina", Password: "hunter22"}, http.StatusBadRequest},
		{"formatted contact", handler.CredentialsRequest{Username: "hank", Password: "hunter22", Contact: "+1 (555) 010-0"}, http.StatusCreated},
		{"short E.164 contact", handler.CredentialsRequest{Username: "iris", Password: "hunter22", Contact: "+12"}, http.StatusCreated},
		{"contact starting with zero", handler.CredentialsRequest{Username: "jack", Password: "hunter22", Contact: "+0123456"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/register", "", tt.creds)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}

			var resp handler.RegisterResult
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Token == "" {
				t.Fatal("expected a token for the new user")
			}
			if w := doRequest(r, http.MethodGet, "/products", resp.Token, nil); w.Code != http.StatusOK {
				t.Errorf("expected the new token to authorize requests, got %d", w.Code)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name     string
		username string
		password string
		wantCode int
	}{
		{"valid", "admin", "secret", http.StatusOK},
		{"wrong password", "admin", "wrong", http.StatusUnauthorized},
		{"unknown user", "nobody", "secret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/login", "", handler.CredentialsRequest{Username: tt.username, Password: tt.password})
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestLoginHandler_RateLimited(t *testing.T) {
	r := newRouter()
	rl.CleanupAllVisitors()
	rl.Configure(0.001, 2)
	t.Cleanup(func() {
		rl.Configure(1000, 1000)
		rl.CleanupAllVisitors()
	})

	creds := handler.CredentialsRequest{Username: "admin", Password: "wrong"}
	for i, want := range []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests} {
		if w := doRequest(r, http.MethodPost, "/login", "", creds); w.Code != want {
			t.Errorf("attempt %d: expected %d, got %d", i+1, want, w.Code)
		}
	}

	// Authenticated routes are not rate limited.
	if w := doRequest(r, http.MethodGet, "/products", token, nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 on a protected route, got %d", w.Code)
	}
}
