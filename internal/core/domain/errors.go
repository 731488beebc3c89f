package domain

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrForbidden          = errors.New("operation is not allowed for this user")
	ErrNotVerifiedBuilder = errors.New("only verified builders can submit projects")
	ErrKindMismatch       = errors.New("listing kind cannot be changed")
	ErrUnknownCatalog     = errors.New("unknown catalog")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrInvalidEngagement  = errors.New("invalid engagement event")
	ErrUnsupportedMedia   = errors.New("file is not a supported image")
	ErrNoGeocodeResult    = errors.New("no geocode candidates found")
)
