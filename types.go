package certify

import (
	"fmt"
	"strings"
	"time"

	"github.com/apontes/go-certify/internal/dateutil"
)

// LaunchProfile selects the browser startup parameters for the execution
// environment. Both profiles must yield the same page layout for the same
// HTML; only process setup differs.
type LaunchProfile string

// Recognized launch profiles.
const (
	// ProfileLocal disables sandboxing for unprivileged local execution.
	ProfileLocal LaunchProfile = "local"

	// ProfilePackaged uses launcher defaults and a resolved executable
	// path, suited to restricted container and serverless filesystems.
	ProfilePackaged LaunchProfile = "packaged"
)

// normalized returns the canonical lower-case profile value. Validation
// and launcher dispatch both run on this form, so every case variant that
// validates also selects the matching flag set.
func (p LaunchProfile) normalized() LaunchProfile {
	return LaunchProfile(strings.ToLower(string(p)))
}

// Validate checks that the profile is a recognized value (case-insensitive).
func (p LaunchProfile) Validate() error {
	switch p.normalized() {
	case ProfileLocal, ProfilePackaged:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidProfile, string(p))
}

// Request identifies a certificate to issue. Immutable for the duration of
// one invocation.
type Request struct {
	ID    string // recipient key, required
	Name  string // display name printed on the certificate
	Grade string // grade printed on the certificate
}

// Validate checks that required fields are present.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyIdentity
	}
	return nil
}

// Record is the persisted certificate row, keyed by recipient identity.
type Record struct {
	ID        string
	Name      string
	Grade     string
	CreatedAt time.Time
}

// TemplateContext holds the fully resolved values bound into the certificate
// template. Transient; exists only for the duration of rendering.
type TemplateContext struct {
	ID          string
	Name        string
	Grade       string
	Date        string // issuance date, already formatted
	MedalBase64 string // medal image, base64 without data-URI prefix
}

// PublicationResult describes the published certificate. The durable
// artifact is the blob in the object store, not this value.
type PublicationResult struct {
	ObjectKey string // "<identity>.pdf"
	PublicURL string
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout    time.Duration
	profile    LaunchProfile
	browserBin string
	dateFormat string // dateutil token format or preset, validated at option time
}

// defaultTimeout bounds the render step, the only stage with unbounded
// external-process latency.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("certify: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithLaunchProfile selects the browser launch profile.
func WithLaunchProfile(p LaunchProfile) Option {
	return func(s *Service) {
		s.cfg.profile = p
	}
}

// WithBrowserBin pins the browser executable path. Takes precedence over
// path resolution in the packaged profile.
func WithBrowserBin(path string) Option {
	return func(s *Service) {
		s.cfg.browserBin = path
	}
}

// WithDateFormat overrides the issuance date format. Accepts dateutil
// tokens (e.g. "DD/MM/YYYY") or a preset name (iso, european, us, long).
// Panics on an unparsable format (programmer error, like WithTimeout).
func WithDateFormat(format string) Option {
	if _, err := dateutil.ParseFormat(format); err != nil {
		panic("certify: " + err.Error())
	}
	return func(s *Service) {
		s.cfg.dateFormat = format
	}
}

// WithRecordStore sets the keyed record store used by the idempotency guard.
func WithRecordStore(store RecordStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithPublisher sets the publication sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}
