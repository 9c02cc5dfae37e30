package passwordreset

import "errors"

var (
	ErrInvalidOrExpiredToken = errors.New("invalid or expired password reset token")
	ErrTokenAlreadyExists    = errors.New("password reset token already exists")
)
