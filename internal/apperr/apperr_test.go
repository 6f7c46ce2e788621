package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/services/org"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{fmt.Errorf("card 3: %w", models.ErrNotFound), KindNotFound, http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrForbidden), KindForbidden, http.StatusForbidden},
		{models.ErrQuotaExceeded, KindQuotaExceeded, http.StatusPaymentRequired},
		{fmt.Errorf("failed to reorder: %w", models.ErrInvalidOrderSet), KindInvalidOrderSet, http.StatusConflict},
		{models.ErrScopeViolation, KindScopeViolation, http.StatusConflict},
		{models.ErrConflict, KindConflict, http.StatusConflict},
		{org.ErrLastOwner, KindConflict, http.StatusConflict},
		{card.ErrEmptyTitle, KindValidation, http.StatusBadRequest},
		{org.ErrNoActor, KindUnauthenticated, http.StatusUnauthorized},
		{errors.New("disk on fire"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		kind := Classify(tt.err)
		if kind != tt.kind {
			t.Errorf("Classify(%v): expected %s, got %s", tt.err, tt.kind.Code(), kind.Code())
		}
		if kind.Status() != tt.status {
			t.Errorf("Status(%v): expected %d, got %d", tt.err, tt.status, kind.Status())
		}
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	if got := Message(fmt.Errorf("card 9 listed twice: %w", models.ErrInvalidOrderSet)); got != RefreshHint {
		t.Errorf("Expected generic refresh message, got %q", got)
	}
	if got := Message(errors.New("pq: connection refused")); got != "internal error" {
		t.Errorf("Expected internal errors to be hidden, got %q", got)
	}
	if got := Message(card.ErrEmptyTitle); got != card.ErrEmptyTitle.Error() {
		t.Errorf("Expected validation message, got %q", got)
	}
}
