package services

import (
	"context"
	"strings"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
)

const (
	VanderbiltEmailDomain = "@vanderbilt.edu"
	MinPasswordLength     = 6

	DestinationHome       = "/home"
	DestinationOnboarding = "/onboarding"
)

// SignupForm is what the user typed, including the confirmation field that is
// never sent to the backend.
type SignupForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type AuthResult struct {
	User        models.CurrentUser `json:"user"`
	Destination string             `json:"destination"`
}

type AuthService struct {
	backend Backend
}

func NewAuthService(backend Backend) *AuthService {
	return &AuthService{backend: backend}
}

func IsVanderbiltEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), VanderbiltEmailDomain)
}

// ValidateSignup applies the checks in the order the form reports them.
func ValidateSignup(form SignupForm) error {
	switch {
	case strings.TrimSpace(form.FirstName) == "":
		return ErrFirstNameRequired
	case strings.TrimSpace(form.LastName) == "":
		return ErrLastNameRequired
	case strings.TrimSpace(form.Email) == "":
		return ErrEmailRequired
	case !IsVanderbiltEmail(form.Email):
		return ErrNotVanderbiltEmail
	case len(form.Password) < MinPasswordLength:
		return ErrPasswordTooShort
	case form.Password != form.ConfirmPassword:
		return ErrPasswordMismatch
	}
	return nil
}

// Signup validates locally, then registers with the backend. New accounts
// always continue into onboarding.
func (s *AuthService) Signup(ctx context.Context, form SignupForm) (*AuthResult, error) {
	if err := ValidateSignup(form); err != nil {
		return nil, err
	}

	resp, err := s.backend.Signup(ctx, models.SignupRequest{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		return nil, &UserError{Message: "Network error. Please try again.", Err: err}
	}
	if resp.Message != models.AuthMessageSignupOK {
		return nil, &UserError{Message: resp.Message}
	}

	return &AuthResult{User: resp.CurrentUser(), Destination: DestinationOnboarding}, nil
}

// Login authenticates and decides where to go next from the backend's
// onboarding flag. A failed profile lookup falls back to home.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	resp, err := s.backend.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, &UserError{Message: "Network error. Please try again.", Err: err}
	}
	if resp.Message != models.AuthMessageLoginOK {
		return nil, &UserError{Message: resp.Message}
	}

	result := &AuthResult{User: resp.CurrentUser(), Destination: DestinationHome}
	if resp.UserID == "" {
		return result, nil
	}

	profile, err := s.backend.GetProfile(ctx, resp.UserID)
	if err != nil {
		logging.Warn("Profile lookup after login failed", map[string]interface{}{
			"user_id": resp.UserID,
			"error":   err.Error(),
		})
		return result, nil
	}
	if !profile.Onboarding.Completed {
		result.Destination = DestinationOnboarding
	}
	return result, nil
}
