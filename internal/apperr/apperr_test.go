package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusBadRequest,
		KindConflict:           http.StatusBadRequest,
		KindInvalidCredentials: http.StatusUnauthorized,
		KindUnauthenticated:    http.StatusUnauthorized,
		KindForbidden:          http.StatusForbidden,
		KindAccountDisabled:    http.StatusForbidden,
		KindNotFound:           http.StatusNotFound,
		KindUnavailable:        http.StatusInternalServerError,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(KindConflict, "username or email already exists"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "username or email already exists", Message(err))

	plain := errors.New("connection refused")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, "internal server error", Message(plain))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", Message(err))
}
