package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

const maxPhotoUploadBytes = services.MaxPhotoBytes + 64<<10

type OnboardingHandler struct {
	backend services.Backend
	guard   *services.InFlightGuard
	now     func() time.Time
}

func NewOnboardingHandler(b services.Backend) *OnboardingHandler {
	return &OnboardingHandler{backend: b, now: time.Now}
}

// SetInFlightGuard rejects a save while another save for the same user is
// still outstanding.
func (h *OnboardingHandler) SetInFlightGuard(guard *services.InFlightGuard) {
	h.guard = guard
}

// OnboardingSaveRequest carries the browser's cursor and working copy.
type OnboardingSaveRequest struct {
	Step    int            `json:"step"`
	Profile models.Profile `json:"profile"`
}

type OnboardingOptions struct {
	Genders   []models.Gender   `json:"genders"`
	Cities    []models.Location `json:"cities"`
	States    []string          `json:"states"`
	Interests []string          `json:"interests"`
	MinAge    int               `json:"minAge"`
	MaxAge    int               `json:"maxAge"`
}

type OnboardingResponse struct {
	Step        int                       `json:"step"`
	Completed   bool                      `json:"completed"`
	Progress    int                       `json:"progress"`
	Current     services.OnboardingStep   `json:"current"`
	Steps       []services.OnboardingStep `json:"steps"`
	CanGoBack   bool                      `json:"canGoBack"`
	Destination string                    `json:"destination,omitempty"`
	Profile     models.Profile            `json:"profile"`
	Options     *OnboardingOptions        `json:"options,omitempty"`
}

func onboardingOptions() *OnboardingOptions {
	return &OnboardingOptions{
		Genders:   models.Genders,
		Cities:    services.CityOptions,
		States:    services.USStates,
		Interests: services.InterestOptions,
		MinAge:    services.MinAge,
		MaxAge:    services.MaxAge,
	}
}

func trackerResponse(t *services.OnboardingTracker) OnboardingResponse {
	resp := OnboardingResponse{
		Step:      t.Step(),
		Completed: t.Done(),
		Progress:  t.Progress(),
		Current:   t.CurrentStep(),
		Steps:     services.OnboardingSteps,
		CanGoBack: t.CanGoBack(),
		Profile:   t.Profile(),
	}
	if resp.Completed {
		resp.Destination = services.DestinationHome
	}
	return resp
}

// Get resumes the wizard at the step the backend reports.
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	tracker := services.NewOnboardingTracker(h.backend, user.UserID)
	if err := tracker.Load(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := trackerResponse(tracker)
	resp.Options = onboardingOptions()
	writeJSON(w, http.StatusOK, resp)
}

func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, false)
}

func (h *OnboardingHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, true)
}

func (h *OnboardingHandler) save(w http.ResponseWriter, r *http.Request, finish bool) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req OnboardingSaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := services.ValidateProfile(req.Profile); err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Load first so a finished onboarding is refused rather than reopened.
	tracker := services.NewOnboardingTracker(h.backend, user.UserID)
	tracker.SetInFlightGuard(h.guard)
	if err := tracker.Load(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	tracker.Restore(req.Step, req.Profile)

	var err error
	if finish {
		err = tracker.Finish(r.Context())
	} else {
		err = tracker.Next(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackerResponse(tracker))
}

// UploadPhoto converts a multipart "photo" field into an inline photo record.
// Nothing is saved until the next Next or Finish.
func (h *OnboardingHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadBytes)
	file, _, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, services.ErrPhotoTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer func() { _ = file.Close() }()

	photo, err := services.PreparePhoto(file, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}
