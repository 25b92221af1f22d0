package assets

import "errors"

// Sentinel errors for asset loading.
var (
	ErrTemplateNotFound = errors.New("certificate template not found")
	ErrMedalNotFound    = errors.New("medal image not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
