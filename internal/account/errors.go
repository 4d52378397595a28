package account

import "errors"

var (
	ErrNotFound     = errors.New("account: not found")
	ErrInvalidInput = errors.New("account: invalid input")
	ErrUnauthorized = errors.New("account: unauthorized")
	ErrConflict     = errors.New("account: already exists")
)
