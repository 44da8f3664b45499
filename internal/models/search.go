package models

type SearchJob struct {
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

type SearchResult struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Interests       []string  `json:"interests,omitempty"`
	Job             SearchJob `json:"job,omitempty"`
	NumConnections  int       `json:"numConnections,omitempty"`
	ProfilePhotoURL string    `json:"profilePhotoUrl,omitempty"`
}

// Headline renders "Title @ Company" with the same fallbacks as the search page.
func (r SearchResult) Headline() string {
	title := r.Job.Title
	if title == "" {
		title = "—"
	}
	if r.Job.CompanyName != "" {
		return title + " @ " + r.Job.CompanyName
	}
	return title
}
