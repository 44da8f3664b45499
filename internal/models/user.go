package models

// CurrentUser is the single locally persisted identity record. It is written
// on login/signup and cleared on logout.
type CurrentUser struct {
	UserID    string `json:"userId" yaml:"user_id"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"firstName" yaml:"first_name"`
	LastName  string `json:"lastName" yaml:"last_name"`
}

func (u CurrentUser) DisplayName() string {
	if u.FirstName == "" {
		return "User"
	}
	return u.FirstName
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by the backend for both signup and login; failures
// carry only Message.
type AuthResponse struct {
	Message   string `json:"message"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

const (
	AuthMessageSignupOK = "Signup successful"
	AuthMessageLoginOK  = "Login successful"
)

func (r AuthResponse) CurrentUser() CurrentUser {
	return CurrentUser{
		UserID:    r.UserID,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}
