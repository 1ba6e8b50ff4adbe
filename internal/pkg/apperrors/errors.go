// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across domain services. Services wrap these with
// fmt.Errorf("...: %w", Err...) so handlers can classify failures with
// errors.Is while keeping the underlying detail in the message.
var (
	// ErrNotFound indicates a cart, product, line item or sale is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a bad quantity, price or payment method.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCart indicates checkout was called on a missing or empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrStockConflict indicates a stock decrement would drive a product's
	// stock below zero. Retried a bounded number of times before surfacing.
	ErrStockConflict = errors.New("insufficient stock")

	// ErrPersistence indicates the backing store failed mid-operation.
	// The surrounding transaction is rolled back before this surfaces.
	ErrPersistence = errors.New("persistence failure")
)

// HTTPStatus maps a domain error to the HTTP status code for the response.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, ErrStockConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
