package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type PageHandler struct {
	templates *template.Template
}

func NewPageHandler(templatesDir string) (*PageHandler, error) {
	templates, err := template.ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &PageHandler{templates: templates}, nil
}

type PageData struct {
	Title       string
	User        *models.CurrentUser
	Destination string
	Steps       []services.OnboardingStep
	Categories  []models.PostCategory
	Interests   []string
}

// Index serves the single page shell. Views are switched client-side; the
// initial destination mirrors what login would pick.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	data := PageData{
		Title:       "PlusOne",
		User:        user,
		Destination: "/login",
		Steps:       services.OnboardingSteps,
		Categories:  models.PostCategories,
		Interests:   services.InterestOptions,
	}
	if user != nil {
		data.Destination = services.DestinationHome
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		logging.Error("Template error", map[string]interface{}{"template": "index.html", "error": err.Error()})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.templates.ExecuteTemplate(w, "404.html", nil); err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}
