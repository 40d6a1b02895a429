package api

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func (h *Handler) renderPage(w http.ResponseWriter, name string, data any) {
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("failed to render page")
	}
}

// Index serves the public map page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderPage(w, "index.html", nil)
}

// SignInPage serves the sign-in form.
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderPage(w, "signin.html", nil)
}

// AdminPage serves the address management page. Session gating happens in the
// router.
func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderPage(w, "admin.html", nil)
}
