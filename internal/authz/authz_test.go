package authz

import (
	"testing"

	"skillshare-backend/internal/apperr"
)

func TestGuards(t *testing.T) {
	cases := []struct {
		name  string
		check func() error
		want  apperr.Kind
	}{
		{name: "anonymous", check: func() error { return RequireAuthenticated("") }, want: apperr.Unauthorized},
		{name: "authenticated", check: func() error { return RequireAuthenticated("u1") }},
		{name: "owner", check: func() error { return RequireOwner("u1", "u1") }},
		{name: "not owner", check: func() error { return RequireOwner("u2", "u1") }, want: apperr.Forbidden},
		{name: "anonymous owner check", check: func() error { return RequireOwner("", "u1") }, want: apperr.Unauthorized},
		{name: "any owner first", check: func() error { return RequireAnyOwner("a", "a", "b") }},
		{name: "any owner second", check: func() error { return RequireAnyOwner("b", "a", "b") }},
		{name: "any owner none", check: func() error { return RequireAnyOwner("c", "a", "b") }, want: apperr.Forbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, tc.want) {
				t.Fatalf("got %v, want kind %q", err, tc.want)
			}
		})
	}
}
