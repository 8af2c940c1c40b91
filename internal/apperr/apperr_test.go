package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{Database, http.StatusInternalServerError},
		{Pool, http.StatusInternalServerError},
		{Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.Status())
		})
	}
}

func TestKindOfUnwrapsChains(t *testing.T) {
	base := NotFoundf("Task with id %s not found", "abc")
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, Internal))
}

func TestPublicMessageHidesServerDetail(t *testing.T) {
	dbErr := NewDatabase(sql.ErrConnDone, "insert task")
	assert.Equal(t, GenericMessage, PublicMessage(dbErr))
	assert.Equal(t, GenericMessage, PublicMessage(NewPool(errors.New("dial tcp: refused"))))
	assert.Equal(t, GenericMessage, PublicMessage(errors.New("boom")))

	bad := BadRequestf("start_date cannot be after end_date")
	assert.Equal(t, "start_date cannot be after end_date", PublicMessage(bad))
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	err := NewDatabase(sql.ErrTxDone, "commit")
	require.ErrorIs(t, err, sql.ErrTxDone)
	assert.Contains(t, err.Error(), "DatabaseError")
	assert.Contains(t, err.Error(), "commit")
}
