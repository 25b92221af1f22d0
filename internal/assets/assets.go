// Package assets loads the certificate markup template and its companion
// medal image, either from the embedded filesystem or from a directory
// override.
package assets

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*
var templates embed.FS

// Asset file names, fixed per document shape.
const (
	templateFile = "certificate.html"
	medalFile    = "medal.png"
)

// Loader loads the template source and the medal image.
type Loader interface {
	Template() (string, error)
	Medal() ([]byte, error)
}

// Compile-time interface checks
var (
	_ Loader = (*EmbeddedLoader)(nil)
	_ Loader = (*DirLoader)(nil)
)

// EmbeddedLoader loads assets compiled into the binary. This is the
// default: the rendered document must be self-contained, so the template
// and medal ship with the program.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Template returns the embedded certificate markup.
func (e *EmbeddedLoader) Template() (string, error) {
	content, err := templates.ReadFile("templates/" + templateFile)
	if err != nil {
		return "", fmt.Errorf("%w: embedded %q", ErrTemplateNotFound, templateFile)
	}
	return string(content), nil
}

// Medal returns the embedded medal image bytes.
func (e *EmbeddedLoader) Medal() ([]byte, error) {
	content, err := templates.ReadFile("templates/" + medalFile)
	if err != nil {
		return nil, fmt.Errorf("%w: embedded %q", ErrMedalNotFound, medalFile)
	}
	return content, nil
}

// DirLoader loads assets from a directory on disk, allowing a deployment to
// replace the certificate design without rebuilding.
type DirLoader struct {
	base string
}

// NewDirLoader creates a DirLoader rooted at base. The directory must
// contain certificate.html and medal.png.
func NewDirLoader(base string) (*DirLoader, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: empty base directory", ErrInvalidAssetPath)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrInvalidAssetPath, base)
	}
	return &DirLoader{base: base}, nil
}

// Template reads the certificate markup from the asset directory.
func (d *DirLoader) Template() (string, error) {
	content, err := os.ReadFile(filepath.Join(d.base, templateFile))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	return string(content), nil
}

// Medal reads the medal image from the asset directory.
func (d *DirLoader) Medal() ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(d.base, medalFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMedalNotFound, err)
	}
	return content, nil
}
