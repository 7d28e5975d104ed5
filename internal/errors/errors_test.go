package errors_test

import (
	"fmt"
	"testing"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, sferrors.Wrapf(nil, "nothing %d", 1))

	err := sferrors.Wrapf(sferrors.ErrNoSession, "[Handler] user %s", "u-1")
	assert.EqualError(t, err, "[Handler] user u-1: no session found")
	assert.True(t, sferrors.Is(err, sferrors.ErrNoSession))
}

type codeError struct{ code int }

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestAs(t *testing.T) {
	err := sferrors.Wrapf(&codeError{code: 502}, "fetch")
	var target *codeError
	require.True(t, sferrors.As(err, &target))
	assert.Equal(t, 502, target.code)
}
