package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("apply: %w", InsufficientStock("only %d available", 3))

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, "only 3 available", MessageOf(err))
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestPersistence(t *testing.T) {
	assert.Nil(t, Persistence(nil, "ignored"))

	cause := errors.New("connection reset")
	err := Persistence(cause, "insert transaction")
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.ErrorIs(t, err, cause)

	// already classified errors pass through untouched
	nf := NotFound("item %s not found", "x")
	assert.Same(t, nf, Persistence(nf, "load item"))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		http int
		grpc codes.Code
	}{
		{Validation("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{DuplicateKey("dup"), http.StatusConflict, codes.AlreadyExists},
		{InsufficientStock("short"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Conflict("busy"), http.StatusConflict, codes.Aborted},
		{InvalidOperation("no"), http.StatusBadRequest, codes.FailedPrecondition},
		{Persistence(errors.New("db"), "down"), http.StatusServiceUnavailable, codes.Unavailable},
		{errors.New("other"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.http, HTTPStatus(tc.err), tc.err.Error())
		assert.Equal(t, tc.grpc, GRPCCode(tc.err), tc.err.Error())
	}
}

func TestGRPCStatus_Message(t *testing.T) {
	st, ok := status.FromError(GRPCStatus(NotFound("item %s not found", "a")))
	assert.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "NOT_FOUND: item a not found", st.Message())
	assert.Nil(t, GRPCStatus(nil))
}
