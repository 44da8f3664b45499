package models

import "strings"

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderNonBinary      Gender = "NON_BINARY"
	GenderOther          Gender = "OTHER"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderOther, GenderPreferNotToSay}

func IsValidGender(g Gender) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderNonBinary:
		return "Non-binary"
	case GenderOther:
		return "Other"
	case GenderPreferNotToSay:
		return "Prefer not to say"
	default:
		return string(g)
	}
}

type Location struct {
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Job struct {
	Title       string `json:"title"`
	CompanyName string `json:"companiesName"`
	CompanyID   string `json:"companyId,omitempty"`
}

type Photo struct {
	Storage string `json:"storage,omitempty"`
	Key     string `json:"key,omitempty"`
	URL     string `json:"url,omitempty"`
}

const (
	PhotoStorageStock  = "stock"
	PhotoStorageInline = "inline-base64"
	DefaultAvatarURL   = "https://avatars.dicebear.com/api/initials/PlusOne.svg?scale=110&background=%23f5f5f5"
	DefaultCountry     = "US"
)

func DefaultPhoto() Photo {
	return Photo{Storage: PhotoStorageStock, Key: "default", URL: DefaultAvatarURL}
}

type Profile struct {
	Gender         *Gender  `json:"gender,omitempty"`
	Age            *int     `json:"age,omitempty"`
	Location       Location `json:"location"`
	Job            Job      `json:"job"`
	Interests      []string `json:"interests"`
	ProfilePhoto   Photo    `json:"profilePhoto"`
	NumConnections int      `json:"numConnections"`
	NumRequests    int      `json:"numRequests"`
}

// DefaultProfile is the blank working copy used before the backend answers.
func DefaultProfile() Profile {
	return Profile{
		Location:     Location{Country: DefaultCountry},
		Interests:    []string{},
		ProfilePhoto: DefaultPhoto(),
	}
}

// HasInterest compares case-sensitively, as interests are a set of exact tags.
func (p Profile) HasInterest(interest string) bool {
	for _, i := range p.Interests {
		if i == interest {
			return true
		}
	}
	return false
}

// Normalized fills the defaults the backend may omit.
func (p Profile) Normalized() Profile {
	out := p
	if out.Location.Country == "" {
		out.Location.Country = DefaultCountry
	}
	if out.Interests == nil {
		out.Interests = []string{}
	} else {
		out.Interests = append([]string(nil), out.Interests...)
	}
	if out.ProfilePhoto.Storage == "" {
		out.ProfilePhoto.Storage = PhotoStorageStock
	}
	if out.ProfilePhoto.Key == "" {
		out.ProfilePhoto.Key = "default"
	}
	if out.ProfilePhoto.URL == "" {
		out.ProfilePhoto.URL = DefaultAvatarURL
	}
	if out.NumConnections < 0 {
		out.NumConnections = 0
	}
	if out.NumRequests < 0 {
		out.NumRequests = 0
	}
	return out
}

// ForRequest trims free-text fields before the profile is sent.
func (p Profile) ForRequest() Profile {
	out := p.Normalized()
	out.Location.City = strings.TrimSpace(out.Location.City)
	out.Location.State = strings.TrimSpace(out.Location.State)
	out.Job.Title = strings.TrimSpace(out.Job.Title)
	out.Job.CompanyName = strings.TrimSpace(out.Job.CompanyName)
	out.Job.CompanyID = strings.TrimSpace(out.Job.CompanyID)
	return out
}

type OnboardingState struct {
	Step        int     `json:"step"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

type ProfileResponse struct {
	UserID           string          `json:"userId"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	ConnectionsCount int             `json:"connectionsCount"`
	RequestsCount    int             `json:"requestsCount"`
	PostsCount       int             `json:"postsCount"`
	Posts            []Post          `json:"posts"`
	Profile          Profile         `json:"profile"`
	Onboarding       OnboardingState `json:"onboarding"`
}

type ProfileUpdate struct {
	Profile   Profile `json:"profile"`
	Step      *int    `json:"step,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
