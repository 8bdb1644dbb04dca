// Package service implements the rental workflow: opening a rental
// against available stock and returning it with a computed fee.
package service

import "errors"

var (
	ErrNotInStock      = errors.New("movie is not in stock")
	ErrAlreadyReturned = errors.New("rental already processed")
)
