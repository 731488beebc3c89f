package constants

const (
	APIPrefix       = "/api/v1"
	AssetsURLPrefix = "/assets"

	// MaxUploadBytes bounds one multipart asset upload.
	MaxUploadBytes = 10 << 20
	// MaxListingBodyBytes bounds a create or replace body.
	MaxListingBodyBytes = 1 << 20
)
