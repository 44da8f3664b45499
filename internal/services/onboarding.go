package services

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/plusone-alumni/plusone/internal/models"
)

const (
	FirstOnboardingStep = 1
	LastOnboardingStep  = 4

	MinAge = 13
	MaxAge = 120
)

type OnboardingStep struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

var OnboardingSteps = []OnboardingStep{
	{Number: 1, Title: "Demographics", Subtitle: "Tell us a bit about yourself"},
	{Number: 2, Title: "Career", Subtitle: "Share what you work on"},
	{Number: 3, Title: "Interests", Subtitle: "Let others know what you enjoy"},
	{Number: 4, Title: "Profile Photo", Subtitle: "Put a face to your name"},
}

// CityOptions pre-fill state and country when picked by name.
var CityOptions = []models.Location{
	{City: "Nashville", State: "TN", Country: "US"},
	{City: "Atlanta", State: "GA", Country: "US"},
	{City: "Chicago", State: "IL", Country: "US"},
	{City: "New York", State: "NY", Country: "US"},
	{City: "San Francisco", State: "CA", Country: "US"},
	{City: "Austin", State: "TX", Country: "US"},
	{City: "Boston", State: "MA", Country: "US"},
	{City: "Seattle", State: "WA", Country: "US"},
	{City: "Miami", State: "FL", Country: "US"},
	{City: "Los Angeles", State: "CA", Country: "US"},
}

var InterestOptions = []string{
	"Live Music & Concerts",
	"Game Nights",
	"Outdoor Adventures",
	"Coffee Chats",
	"Fitness & Wellness",
	"Volunteer Work",
	"Art & Museums",
	"Foodie Finds",
	"Sports & Intramurals",
	"Hackathons",
}

var USStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY",
	"LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND",
	"OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

func clampStep(step int) int {
	if step < FirstOnboardingStep {
		return FirstOnboardingStep
	}
	if step > LastOnboardingStep {
		return LastOnboardingStep
	}
	return step
}

// OnboardingTracker walks one user through the profile wizard. The cursor and
// working copy are local; the backend's answer to every save is authoritative
// for both step and completion.
type OnboardingTracker struct {
	backend Backend
	userID  string
	guard   *InFlightGuard

	mu        sync.Mutex
	step      int
	completed bool
	saving    bool
	profile   models.Profile
}

func NewOnboardingTracker(backend Backend, userID string) *OnboardingTracker {
	return &OnboardingTracker{
		backend: backend,
		userID:  userID,
		step:    FirstOnboardingStep,
		profile: models.DefaultProfile(),
	}
}

// SetInFlightGuard makes saves exclusive per user across trackers, e.g. one
// per HTTP request.
func (t *OnboardingTracker) SetInFlightGuard(guard *InFlightGuard) {
	t.guard = guard
}

// Load resumes from whatever step the backend reports.
func (t *OnboardingTracker) Load(ctx context.Context) error {
	resp, err := t.backend.GetProfile(ctx, t.userID)
	if err != nil {
		return remoteError("Failed to load profile", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.hydrate(resp, FirstOnboardingStep)
	return nil
}

// Restore seeds the tracker from a client-held cursor and working copy, e.g.
// a browser form posted back to the server. Call Load first: completion is
// only ever taken from the backend and Restore leaves it as is.
func (t *OnboardingTracker) Restore(step int, profile models.Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step = clampStep(step)
	t.profile = profile.Normalized()
}

func (t *OnboardingTracker) hydrate(resp *models.ProfileResponse, fallbackStep int) {
	t.profile = resp.Profile.Normalized()
	if resp.Onboarding.Completed {
		t.completed = true
	}
	step := resp.Onboarding.Step
	if step == 0 {
		step = fallbackStep
	}
	t.step = clampStep(step)
}

func (t *OnboardingTracker) Step() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step
}

// Done reports that the backend marked onboarding complete; callers leave
// the wizard.
func (t *OnboardingTracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

func (t *OnboardingTracker) Profile() models.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile.Normalized()
}

func (t *OnboardingTracker) CurrentStep() OnboardingStep {
	return OnboardingSteps[t.Step()-1]
}

// Progress is the percentage shown in the step header.
func (t *OnboardingTracker) Progress() int {
	return int(math.Round(float64(t.Step()) / float64(LastOnboardingStep) * 100))
}

func (t *OnboardingTracker) CanGoBack() bool {
	return t.Step() > FirstOnboardingStep
}

func (t *OnboardingTracker) IsLastStep() bool {
	return t.Step() == LastOnboardingStep
}

// Back moves the cursor only; nothing already saved is reverted.
func (t *OnboardingTracker) Back() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step = clampStep(t.step - 1)
}

// Next saves the whole working copy and asks to advance one step.
func (t *OnboardingTracker) Next(ctx context.Context) error {
	t.mu.Lock()
	next := clampStep(t.step + 1)
	t.mu.Unlock()
	return t.persist(ctx, next, false)
}

// Finish saves the working copy and marks onboarding complete.
func (t *OnboardingTracker) Finish(ctx context.Context) error {
	return t.persist(ctx, LastOnboardingStep, true)
}

func (t *OnboardingTracker) persist(ctx context.Context, step int, complete bool) error {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return ErrOnboardingComplete
	}
	if t.saving {
		t.mu.Unlock()
		return ErrRequestInFlight
	}
	t.saving = true
	update := models.ProfileUpdate{
		Profile:   t.profile.ForRequest(),
		Step:      &step,
		Completed: &complete,
	}
	t.mu.Unlock()

	release, err := t.guard.Acquire(ctx, t.userID, "onboarding", "save")
	if err != nil {
		t.mu.Lock()
		t.saving = false
		t.mu.Unlock()
		return err
	}
	resp, err := t.backend.UpdateProfile(ctx, t.userID, update)
	release()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.saving = false
	if err != nil {
		return remoteError("Failed to save your progress", err)
	}
	t.hydrate(resp, step)
	return nil
}

func (t *OnboardingTracker) SetGender(gender *models.Gender) error {
	if gender != nil && !models.IsValidGender(*gender) {
		return ErrInvalidGender
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.Gender = gender
	return nil
}

func (t *OnboardingTracker) SetAge(age *int) error {
	if age != nil && (*age < MinAge || *age > MaxAge) {
		return ErrInvalidAge
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.Age = age
	return nil
}

// SetCity fills state and country when the city is one of CityOptions,
// otherwise keeps what was there.
func (t *OnboardingTracker) SetCity(city string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.Location.City = city
	for _, opt := range CityOptions {
		if strings.EqualFold(opt.City, strings.TrimSpace(city)) {
			t.profile.Location.State = opt.State
			t.profile.Location.Country = opt.Country
			return
		}
	}
}

func (t *OnboardingTracker) SetState(state string) error {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state != "" && !isUSState(state) {
		return ErrInvalidState
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.Location.State = state
	return nil
}

func isUSState(state string) bool {
	for _, s := range USStates {
		if s == state {
			return true
		}
	}
	return false
}

func (t *OnboardingTracker) SetJob(title, companyName, companyID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.Job = models.Job{Title: title, CompanyName: companyName, CompanyID: companyID}
}

// ToggleInterest adds the interest, or removes it if already selected.
func (t *OnboardingTracker) ToggleInterest(interest string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.profile.Interests {
		if existing == interest {
			t.profile.Interests = append(t.profile.Interests[:i:i], t.profile.Interests[i+1:]...)
			return
		}
	}
	t.profile.Interests = append(t.profile.Interests, interest)
}

// AddCustomInterest toggles a free-text interest; blank input is ignored.
func (t *OnboardingTracker) AddCustomInterest(interest string) {
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return
	}
	t.ToggleInterest(interest)
}

func (t *OnboardingTracker) SetPhoto(photo models.Photo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile.ProfilePhoto = photo
}

func (t *OnboardingTracker) ResetPhoto() {
	t.SetPhoto(models.DefaultPhoto())
}

// ValidateProfile applies the same checks as the individual setters to a
// working copy that arrived whole, e.g. from a browser.
func ValidateProfile(p models.Profile) error {
	if p.Gender != nil && !models.IsValidGender(*p.Gender) {
		return ErrInvalidGender
	}
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		return ErrInvalidAge
	}
	if state := strings.TrimSpace(p.Location.State); state != "" && !isUSState(strings.ToUpper(state)) {
		return ErrInvalidState
	}
	return nil
}
