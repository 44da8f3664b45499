package services

import (
	"errors"

	"github.com/plusone-alumni/plusone/internal/backend"
)

// ValidationError is a client-side check that failed before any request was
// made. Message is shown to the user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserError wraps a failed remote call with the message the user sees. The
// underlying cause is kept for logs.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

var (
	ErrMessageRequired    = &ValidationError{Field: "message", Message: "Message is required"}
	ErrSelfConnection     = &ValidationError{Field: "toUserId", Message: "You can't connect with yourself"}
	ErrMissingFields      = &ValidationError{Message: "Please fill in all fields"}
	ErrFirstNameRequired  = &ValidationError{Field: "firstName", Message: "First name is required"}
	ErrLastNameRequired   = &ValidationError{Field: "lastName", Message: "Last name is required"}
	ErrEmailRequired      = &ValidationError{Field: "email", Message: "Email is required"}
	ErrNotVanderbiltEmail = &ValidationError{Field: "email", Message: "Please use your Vanderbilt email (@vanderbilt.edu)"}
	ErrPasswordTooShort   = &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	ErrPasswordMismatch   = &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	ErrTitleRequired      = &ValidationError{Field: "title", Message: "Title is required"}
	ErrDescRequired       = &ValidationError{Field: "description", Message: "Description is required"}
	ErrInvalidCategory    = &ValidationError{Field: "category", Message: "Please choose a category"}
	ErrInvalidAge         = &ValidationError{Field: "age", Message: "Age must be between 13 and 120"}
	ErrInvalidGender      = &ValidationError{Field: "gender", Message: "Please choose a valid gender option"}
	ErrInvalidState       = &ValidationError{Field: "state", Message: "Please choose a valid state"}
	ErrPhotoTooLarge      = &ValidationError{Field: "photo", Message: "Photo must be 5 MB or smaller"}
	ErrPhotoUnsupported   = &ValidationError{Field: "photo", Message: "Photo must be a PNG, JPEG, GIF or WebP image"}

	ErrRequestInFlight    = errors.New("request already in progress")
	ErrOnboardingComplete = errors.New("onboarding already completed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// remoteError builds the message-only error shown for a failed call. A
// message supplied by the backend wins over the fallback.
func remoteError(fallback string, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &UserError{Message: apiErr.Message, Err: err}
	}
	return &UserError{Message: fallback, Err: err}
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	switch {
	case errors.Is(err, ErrRequestInFlight):
		return "Please wait for the current request to finish"
	case errors.Is(err, ErrOnboardingComplete):
		return "Onboarding is already complete"
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrSessionNotFound):
		return "Please log in"
	}
	return "An error occurred. Please try again."
}
