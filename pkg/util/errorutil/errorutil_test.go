package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewNotFound("project", nil)), CodeNotFound, http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
		{"storage", NewStorageError(errors.New("conn reset")), CodeStorage, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			if de.Code != tc.code {
				t.Errorf("code = %s, want %s", de.Code, tc.code)
			}
			if de.HTTPStatus != tc.status {
				t.Errorf("status = %d, want %d", de.HTTPStatus, tc.status)
			}
		})
	}
}

func TestInvalidTransitionCarriesPair(t *testing.T) {
	de := ToDomainError(NewInvalidTransition("NEW", "CLOSED"))
	if de.Details["current"] != "NEW" || de.Details["requested"] != "CLOSED" {
		t.Fatalf("unexpected details: %v", de.Details)
	}
}

func TestStorageOrNotFound(t *testing.T) {
	if got := CodeOf(StorageOrNotFound(pgx.ErrNoRows, "question", nil)); got != CodeNotFound {
		t.Errorf("no rows -> %s", got)
	}
	if got := CodeOf(StorageOrNotFound(errors.New("io"), "question", nil)); got != CodeStorage {
		t.Errorf("io -> %s", got)
	}
	if StorageOrNotFound(nil, "question", nil) != nil {
		t.Error("nil should stay nil")
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q", got)
	}
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	if !errors.Is(NewStorageError(cause), cause) {
		t.Fatal("storage error should unwrap to cause")
	}
}

func TestAsStorageError(t *testing.T) {
	if got := CodeOf(AsStorageError(errors.New("commit failed"))); got != CodeStorage {
		t.Errorf("raw error -> %s", got)
	}
	if got := CodeOf(AsStorageError(NewForbidden("no"))); got != CodeForbidden {
		t.Errorf("domain error -> %s", got)
	}
	if AsStorageError(nil) != nil {
		t.Error("nil should stay nil")
	}
}
