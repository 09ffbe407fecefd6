package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticValidator map[string]string

func (v staticValidator) ValidateJWT(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func TestAuthMiddleware(t *testing.T) {
	validator := staticValidator{"good": "user-1"}

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AuthMiddleware(validator)(next)

	tests := []struct {
		name   string
		header string
		status int
		userID string
	}{
		{"valid token", "Bearer good", http.StatusNoContent, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"no token", "Bearer", http.StatusUnauthorized, ""},
		{"bad token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if seen != tt.userID {
				t.Fatalf("expected user %q, got %q", tt.userID, seen)
			}
		})
	}
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetUserID(req.Context()); id != "" {
		t.Fatalf("expected no user, got %q", id)
	}
	if id := GetUserID(WithUserID(req.Context(), "u")); id != "u" {
		t.Fatalf("expected u, got %q", id)
	}
}
