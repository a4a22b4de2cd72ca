package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewNotFound("post")
	converted := ToDomainError(fmt.Errorf("wrapped: %w", original))
	if converted.Code != CodeNotFound || converted.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected conversion %+v", converted)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	if converted.Code != CodeNotFound {
		t.Fatalf("code = %s, want NOT_FOUND", converted.Code)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	if converted.Code != CodeInternal || converted.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected conversion %+v", converted)
	}
}

// Every unauthenticated error must carry the same client-facing message
// regardless of the underlying code.
func TestUnauthenticatedMessagesUniform(t *testing.T) {
	codes := []string{
		CodeAuthHeaderMissing,
		CodeAuthHeaderMalformed,
		CodeCredentialsInvalid,
		CodeTokenInvalid,
		CodeTokenExpired,
		CodeIdentityNotFound,
	}
	for _, code := range codes {
		de := ToDomainError(NewUnauthenticated(code))
		if de.HTTPStatus != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d", code, de.HTTPStatus)
		}
		if de.Message != "unauthorized" {
			t.Fatalf("%s: message = %q, want uniform", code, de.Message)
		}
	}
}
