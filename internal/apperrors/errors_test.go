package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lapak/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", apperrors.ErrNotEnoughStock)

	got := apperrors.From(wrapped)
	assert.Same(t, apperrors.ErrNotEnoughStock, got)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "ERR_017", got.Code)
	assert.True(t, errors.Is(wrapped, apperrors.ErrNotEnoughStock))

	assert.Same(t, apperrors.ErrInternal, apperrors.From(errors.New("connection reset")))
}

func TestEmptyListCodesDiffer(t *testing.T) {
	assert.Equal(t, apperrors.ErrEmptyItemList.Msg, apperrors.ErrEmptyCart.Msg)
	assert.NotEqual(t, apperrors.ErrEmptyItemList.Code, apperrors.ErrEmptyCart.Code)
	assert.False(t, errors.Is(apperrors.ErrEmptyCart, apperrors.ErrEmptyItemList))
}
