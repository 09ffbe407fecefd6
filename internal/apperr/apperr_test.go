package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("connection reset")
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "typed", err: New(NotFound, "post %s not found", "p1"), want: NotFound},
		{name: "wrapped typed", err: fmt.Errorf("load post: %w", New(Forbidden, "nope")), want: Forbidden},
		{name: "untyped", err: base, want: Internal},
		{name: "ensure untyped", err: Ensure(base, "list posts"), want: Internal},
		{name: "ensure keeps kind", err: Ensure(New(ConflictRetryable, "busy"), "toggle like"), want: ConflictRetryable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bucket unavailable")
	err := Wrap(StorageError, cause, "failed to store %s", "a.png")
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "failed to store a.png: bucket unavailable" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Message(fmt.Errorf("outer: %w", err)) != "failed to store a.png" {
		t.Fatalf("Message did not unwrap to typed error")
	}
}

func TestIsNil(t *testing.T) {
	if Is(nil, Internal) {
		t.Fatalf("nil error must not match any kind")
	}
	if Ensure(nil, "noop") != nil {
		t.Fatalf("Ensure(nil) must be nil")
	}
}
