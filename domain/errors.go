package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")
	// ErrForbidden will throw if the caller is not the writer of the item
	ErrForbidden = errors.New("you do not have permission for this item")
	// ErrUnauthorized will throw if the caller could not be authenticated
	ErrUnauthorized = errors.New("user not authenticated")
	// ErrCacheMiss will throw if the key is not loaded into the cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrAlreadyLiked will throw if the user already liked the item
	ErrAlreadyLiked = errors.New("item is already liked")
	// ErrNotLiked will throw if the user never liked the item
	ErrNotLiked = errors.New("item is not liked")

	// ErrTransactionFailed is the single failure surfaced for any aborted
	// multi-document mutation. Nothing of the mutation is visible afterwards.
	ErrTransactionFailed = errors.New("transaction failed")
)
