package certify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/apontes/go-certify/internal/assets"
	"github.com/apontes/go-certify/internal/dateutil"
)

// templateComposer abstracts certificate document composition to allow
// substitution in tests.
type templateComposer interface {
	Context(req Request, issuedAt time.Time) (TemplateContext, error)
	Compose(ctx context.Context, tc TemplateContext) (string, error)
}

// Compile-time interface check
var _ templateComposer = (*certComposer)(nil)

// certComposer binds a template context into the certificate markup.
// The medal image is inlined as base64 so the rendered document is
// self-contained and the browser never fetches external assets.
type certComposer struct {
	loader  assets.Loader
	dateFmt string // dateutil token format or preset
}

// newCertComposer creates a composer backed by the given asset loader.
func newCertComposer(loader assets.Loader, dateFmt string) *certComposer {
	return &certComposer{loader: loader, dateFmt: dateFmt}
}

// Context resolves the template context for a request. The date reflects
// issuance time, never request time.
func (c *certComposer) Context(req Request, issuedAt time.Time) (TemplateContext, error) {
	medal, err := c.loader.Medal()
	if err != nil {
		return TemplateContext{}, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}

	date, err := dateutil.Format(issuedAt, c.dateFmt)
	if err != nil {
		return TemplateContext{}, fmt.Errorf("%w: %v", ErrTemplateBind, err)
	}

	return TemplateContext{
		ID:          req.ID,
		Name:        req.Name,
		Grade:       req.Grade,
		Date:        date,
		MedalBase64: base64.StdEncoding.EncodeToString(medal),
	}, nil
}

// Compose loads the certificate markup and binds the context into it.
// Placeholders are substituted by exact field name; a placeholder with no
// matching field fails with ErrTemplateBind rather than rendering empty.
func (c *certComposer) Compose(ctx context.Context, tc TemplateContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := c.loader.Template()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}

	tmpl, err := template.New("certificate").Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}

	// template.URL keeps html/template from rejecting the data URI scheme.
	data := map[string]any{
		"id":    tc.ID,
		"name":  tc.Name,
		"grade": tc.Grade,
		"date":  tc.Date,
		"medal": template.URL("data:image/png;base64," + tc.MedalBase64),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateBind, err)
	}

	return buf.String(), nil
}
