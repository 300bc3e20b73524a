package pricecap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/pricecap"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pricecap.Errorf(pricecap.ENOTFOUND, "capture %q not found", "abc")

	assert.Equal(t, pricecap.ENOTFOUND, pricecap.ErrorCode(err))
	assert.Equal(t, "capture \"abc\" not found", pricecap.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("scan: %w", pricecap.Errorf(pricecap.EINVALID, "bad selector"))

	assert.Equal(t, pricecap.EINVALID, pricecap.ErrorCode(err))
	assert.Equal(t, "bad selector", pricecap.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, pricecap.EINTERNAL, pricecap.ErrorCode(err))
	assert.Equal(t, "Internal error.", pricecap.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pricecap.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pricecap.ErrorMessage(nil))
}
