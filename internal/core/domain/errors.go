package domain

import "errors"

// --- ERREURS DU DOMAINE ---
var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrDiaryNotFound    = errors.New("diary not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrRequestNotFound  = errors.New("friend request not found")

	ErrForbidden        = errors.New("forbidden")
	ErrSelfRequest      = errors.New("cannot befriend yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrNotFriends       = errors.New("not friends")
	ErrCategoryExists   = errors.New("category already exists")
	ErrInvalidInput     = errors.New("invalid input")
)
