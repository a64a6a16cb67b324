package format

import (
	"fmt"
	"strings"

	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/rs/zerolog/log"
)

// JPEGMode selects how JPEG carriers are prepared.
type JPEGMode int

const (
	// JPEGTranscode embeds into the source file's own coefficients.
	JPEGTranscode JPEGMode = iota
	// JPEGReencode decodes to pixels and re-encodes with Options.JPEG first.
	JPEGReencode
)

// ParseJPEGMode accepts "transcode" and "reencode".
func ParseJPEGMode(s string) (JPEGMode, error) {
	switch strings.ToLower(s) {
	case "transcode", "":
		return JPEGTranscode, nil
	case "reencode":
		return JPEGReencode, nil
	}
	return 0, fmt.Errorf("unknown JPEG mode %q", s)
}

// Options configure the backends of a Registry.
type Options struct {
	JPEGMode JPEGMode
	JPEG     jpeg.Options
}

// Registry is the fixed, ordered set of backends.
type Registry struct {
	backends []Backend
}

// NewRegistry returns the PNG, JPEG, TIFF, WEBP and BMP backends, probed in
// that order.
func NewRegistry(o Options) *Registry {
	return &Registry{backends: []Backend{
		newPNG(),
		newJPEG(o),
		newTIFF(),
		newWEBP(),
		newBMP(),
	}}
}

// Backends returns the registered backends in probe order.
func (r *Registry) Backends() []Backend {
	return append([]Backend(nil), r.backends...)
}

// Names returns the backend names in probe order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Lookup returns the first backend whose probe accepts the file at path.
func (r *Registry) Lookup(path string) (Backend, error) {
	head, err := sniff(path)
	if err != nil {
		return nil, err
	}
	for _, b := range r.backends {
		ok := false
		if m, isMatcher := b.(matcher); isMatcher {
			ok = m.match(head)
		} else {
			ok = b.Probe(path)
		}
		if ok {
			log.Debug().Str("path", path).Str("format", b.Name()).Msg("Selected image backend")
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, path, strings.Join(r.Names(), ", "))
}
