package certify

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/apontes/go-certify/internal/assets"
	"github.com/apontes/go-certify/internal/dateutil"
)

// fakeLoader returns canned assets for composer tests.
type fakeLoader struct {
	template    string
	medal       []byte
	templateErr error
	medalErr    error
}

func (f *fakeLoader) Template() (string, error) {
	if f.templateErr != nil {
		return "", f.templateErr
	}
	return f.template, nil
}

func (f *fakeLoader) Medal() ([]byte, error) {
	if f.medalErr != nil {
		return nil, f.medalErr
	}
	return f.medal, nil
}

func TestComposeBindsAllFields(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("medal-bytes"))
	composer := newCertComposer(&fakeLoader{
		template: `<p>{{.name}} {{.grade}} {{.date}} {{.id}}</p><img src="{{.medal}}">`,
	}, dateutil.DefaultFormat)

	tc := TemplateContext{
		ID:          "u1",
		Name:        "Ana",
		Grade:       "A",
		Date:        "01/01/2024",
		MedalBase64: payload,
	}

	html, err := composer.Compose(context.Background(), tc)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for _, want := range []string{"Ana", "A", "01/01/2024", "u1", payload, "data:image/png;base64,"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestComposeFailsOnUnresolvedPlaceholder(t *testing.T) {
	composer := newCertComposer(&fakeLoader{
		template: `<p>{{.name}} {{.signature}}</p>`,
	}, dateutil.DefaultFormat)

	_, err := composer.Compose(context.Background(), TemplateContext{Name: "Ana"})
	if !errors.Is(err, ErrTemplateBind) {
		t.Fatalf("error = %v, want ErrTemplateBind", err)
	}
}

func TestComposeLoadFailures(t *testing.T) {
	tests := []struct {
		name   string
		loader *fakeLoader
	}{
		{"template unreadable", &fakeLoader{templateErr: assets.ErrTemplateNotFound}},
		{"template unparsable", &fakeLoader{template: "{{.name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := newCertComposer(tt.loader, dateutil.DefaultFormat)
			_, err := composer.Compose(context.Background(), TemplateContext{})
			if !errors.Is(err, ErrTemplateLoad) {
				t.Fatalf("error = %v, want ErrTemplateLoad", err)
			}
		})
	}
}

func TestContextResolvesMedalAndDate(t *testing.T) {
	medal := []byte{0x89, 'P', 'N', 'G'}
	composer := newCertComposer(&fakeLoader{medal: medal}, dateutil.DefaultFormat)

	issuedAt := time.Date(2024, 3, 9, 15, 30, 0, 0, time.UTC)
	tc, err := composer.Context(Request{ID: "u1", Name: "Ana", Grade: "A"}, issuedAt)
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}

	if tc.Date != "09/03/2024" {
		t.Errorf("date = %q, want %q", tc.Date, "09/03/2024")
	}
	if tc.MedalBase64 != base64.StdEncoding.EncodeToString(medal) {
		t.Errorf("medal = %q, want base64 of raw bytes", tc.MedalBase64)
	}
	if tc.ID != "u1" || tc.Name != "Ana" || tc.Grade != "A" {
		t.Errorf("context = %+v, want request fields copied", tc)
	}
}

func TestContextMedalLoadFailure(t *testing.T) {
	composer := newCertComposer(&fakeLoader{medalErr: assets.ErrMedalNotFound}, dateutil.DefaultFormat)

	_, err := composer.Context(Request{ID: "u1"}, time.Now())
	if !errors.Is(err, ErrTemplateLoad) {
		t.Fatalf("error = %v, want ErrTemplateLoad", err)
	}
}

// TestComposeEmbeddedTemplate exercises the real shipped assets end to end.
func TestComposeEmbeddedTemplate(t *testing.T) {
	composer := newCertComposer(assets.NewEmbeddedLoader(), dateutil.DefaultFormat)

	tc, err := composer.Context(Request{ID: "123", Name: "João", Grade: "Gold"}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}

	html, err := composer.Compose(context.Background(), tc)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for _, want := range []string{"João", "Gold", "02/01/2024", "123", "data:image/png;base64,"} {
		if !strings.Contains(html, want) {
			t.Errorf("embedded template output missing %q", want)
		}
	}
	if strings.Contains(html, "{{") {
		t.Error("embedded template output contains unresolved placeholders")
	}
}
