// Package apperrors holds the typed failures that cross the service boundary.
// Each kind carries the HTTP status and the stable ERR_NNN code it is rendered with.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a failure with a fixed status, code and message.
type AppError struct {
	Status int
	Code   string
	Msg    string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(status int, code, msg string) *AppError {
	return &AppError{Status: status, Code: code, Msg: msg}
}

var (
	ErrInternal               = newError(http.StatusInternalServerError, "ERR_001", "INTERNAL SERVER ERROR")
	ErrMissingField           = newError(http.StatusBadRequest, "ERR_002", "MISSING REQUIRED FIELDS")
	ErrInvalidField           = newError(http.StatusBadRequest, "ERR_003", "INVALID FIELD FORMAT")
	ErrUnauthenticated        = newError(http.StatusUnauthorized, "ERR_005", "UNAUTHENTICATED")
	ErrBadAuthorizationHeader = newError(http.StatusBadRequest, "ERR_006", "BAD AUTHORIZATION HEADER")
	ErrInvalidToken           = newError(http.StatusUnauthorized, "ERR_007", "INVALID TOKEN")
	ErrStoreNotFound          = newError(http.StatusNotFound, "ERR_010", "STORE NOT FOUND")
	ErrItemNotFound           = newError(http.StatusNotFound, "ERR_013", "ITEM NOT FOUND")
	ErrNotEnoughStock         = newError(http.StatusConflict, "ERR_017", "NOT ENOUGH STOCK")
	ErrEmptyItemList          = newError(http.StatusUnprocessableEntity, "ERR_018", "EMPTY ITEM LIST")
	ErrOrderNotFound          = newError(http.StatusNotFound, "ERR_019", "ORDER NOT FOUND")
	ErrOrderNotOwned          = newError(http.StatusForbidden, "ERR_020", "NOT YOUR ORDER")
	ErrInvalidOrderStatus     = newError(http.StatusConflict, "ERR_021", "INVALID ORDER STATUS")
	ErrEmptyCart              = newError(http.StatusUnprocessableEntity, "ERR_024", "EMPTY ITEM LIST")
	ErrInvalidAccount         = newError(http.StatusUnauthorized, "ERR_025", "INVALID ACCOUNT")
)

// From returns the AppError carried by err, or ErrInternal when err is not one.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}
