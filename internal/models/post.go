package models

type PostCategory string

const (
	CategoryEvents      PostCategory = "Events"
	CategoryJobs        PostCategory = "Job opportunities"
	CategoryInternships PostCategory = "Internships"
	CategoryHousing     PostCategory = "Housing"
)

var PostCategories = []PostCategory{CategoryEvents, CategoryJobs, CategoryInternships, CategoryHousing}

func IsValidCategory(c PostCategory) bool {
	for _, v := range PostCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Post struct {
	ID          string       `json:"id,omitempty"`
	UserID      string       `json:"userId"`
	Category    PostCategory `json:"category"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
}
