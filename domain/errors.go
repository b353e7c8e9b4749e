package domain

import "errors"

// Authentication failure causes. These are internal: the middleware logs them
// to tell the stages apart but collapses all of them to ErrNotAuthorized at
// the public boundary, so a caller cannot probe which stage rejected it.
var (
	ErrTokenNotVerified  = errors.New("token not verified")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUserNotAuthorized = errors.New("user not authorized")
)

// ErrNotAuthorized is the single opaque error surfaced for any of the above.
var ErrNotAuthorized = errors.New("not authorized")

// Store-level not-found sentinels.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSchoolNotFound  = errors.New("school not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateUser   = errors.New("user with this username or email already exists")
	ErrDuplicateReview = errors.New("school already reviewed by this user")
)
