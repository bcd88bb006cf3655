// Package portal renders the server-side HTML pages of the CMS. Rendering is
// the layer's only expensive operation, so delivered bytes go through a named
// cache: look the page up by key, render on miss, store the result back. The
// cache never computes anything itself and can be toggled off underneath the
// service without breaking page delivery.
package portal

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/harborcms/portalcache/internal/apperrors"
	"github.com/harborcms/portalcache/internal/cacheable"
	"github.com/harborcms/portalcache/internal/metrics"
)

// PageService renders named page templates with cache-aside delivery.
type PageService struct {
	tmpl   *template.Template
	cache  *cacheable.Service
	logger zerolog.Logger
}

// NewPageService creates a page service over a parsed template set and the
// page cache.
func NewPageService(tmpl *template.Template, cache *cacheable.Service, logger zerolog.Logger) *PageService {
	return &PageService{
		tmpl:   tmpl,
		cache:  cache,
		logger: logger.With().Str("component", "portal").Logger(),
	}
}

// ParseTemplates parses every template matching pattern with the portal
// function map installed.
func ParseTemplates(pattern string) (*template.Template, error) {
	return template.New("portal").Funcs(FuncMap()).ParseGlob(pattern)
}

// Render delivers the named page. The variant distinguishes renderings of the
// same page that differ by request context (locale, role, query signature);
// callers that render a page only one way pass "".
//
// A cache hit returns the stored bytes untouched. On miss the template is
// executed and the result stored back; when the cache is disabled the Put is
// a no-op and every call renders.
func (s *PageService) Render(page, variant string, data any) ([]byte, error) {
	key := pageKey(page, variant)

	if cached, ok := s.cache.Get(key); ok {
		metrics.PagesRenderedTotal.WithLabelValues(page, "cache").Inc()
		return cached, nil
	}

	t := s.tmpl.Lookup(page)
	if t == nil {
		return nil, apperrors.NewPageNotFoundError(page)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}

	rendered := buf.Bytes()
	s.cache.Put(key, rendered)
	metrics.PagesRenderedTotal.WithLabelValues(page, "render").Inc()
	s.logger.Debug().Str("page", page).Str("variant", variant).Int("bytes", len(rendered)).Msg("Page rendered")
	return rendered, nil
}

// DataFunc returns the model for one page render. A nil DataFunc renders
// every page with no model.
type DataFunc func(page, variant string, r *http.Request) any

// Handler serves rendered pages at GET /pages/{page} with gzip response
// compression. The cache variant is taken from the "variant" query parameter,
// so localized or role-specific renderings of the same page are cached
// separately.
func (s *PageService) Handler(data DataFunc) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pages/{page}", func(w http.ResponseWriter, r *http.Request) {
		page := r.PathValue("page")
		variant := r.URL.Query().Get("variant")

		var model any
		if data != nil {
			model = data(page, variant, r)
		}

		out, err := s.Render(page, variant, model)
		if err != nil {
			if errors.Is(err, &apperrors.ErrPageNotFound{}) {
				http.NotFound(w, r)
				return
			}
			s.logger.Error().Err(err).Str("page", page).Msg("Page render failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(out)
	})
	return gzhttp.GzipHandler(mux)
}

// Invalidate drops the cached rendering of one page variant, e.g. after the
// underlying content changed.
func (s *PageService) Invalidate(page, variant string) bool {
	return s.cache.Remove(pageKey(page, variant))
}

func pageKey(page, variant string) string {
	if variant == "" {
		return "page:" + page
	}
	return "page:" + page + ":" + variant
}
