package certify

import "errors"

// Sentinel errors for pipeline operations. Every stage failure wraps exactly
// one of the five taxonomy errors so callers can classify with errors.Is.
var (
	// Taxonomy errors, one per pipeline stage.
	ErrTemplateLoad = errors.New("template load failed")
	ErrTemplateBind = errors.New("template binding failed")
	ErrRecordStore  = errors.New("record store failure")
	ErrRender       = errors.New("PDF rendering failed")
	ErrPublish      = errors.New("certificate publication failed")

	// Request validation errors.
	ErrEmptyIdentity = errors.New("identity cannot be empty")

	// Browser-level errors. Wrapped into ErrRender before leaving the
	// rendering stage; exported for tests that probe the render path.
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrContentSet     = errors.New("failed to set page content")
	ErrPDFExport      = errors.New("PDF export failed")

	// Record store errors.
	ErrRecordNotFound = errors.New("certificate record not found")

	// Launch profile validation errors.
	ErrInvalidProfile = errors.New("invalid launch profile")
)
