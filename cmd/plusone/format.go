package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

// Timestamps from the backend carry no zone and are treated as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (c *cli) ago(stamp string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, stamp, time.UTC); err == nil {
			return humanize.RelTime(t, c.now(), "ago", "from now")
		}
	}
	return "some time ago"
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func jobLine(job models.Job) string {
	switch {
	case job.Title != "" && job.CompanyName != "":
		return job.Title + " @ " + job.CompanyName
	case job.Title != "":
		return job.Title
	case job.CompanyName != "":
		return job.CompanyName
	}
	return ""
}

func printProfile(w io.Writer, p models.Profile) {
	if p.Gender != nil {
		fmt.Fprintf(w, "  Gender:    %s\n", p.Gender.Label())
	}
	if p.Age != nil {
		fmt.Fprintf(w, "  Age:       %d\n", *p.Age)
	}
	if p.Location.City != "" || p.Location.State != "" {
		fmt.Fprintf(w, "  Location:  %s\n", strings.Trim(p.Location.City+", "+p.Location.State, ", "))
	}
	if line := jobLine(p.Job); line != "" {
		fmt.Fprintf(w, "  Job:       %s\n", line)
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(w, "  Interests: %s\n", strings.Join(p.Interests, ", "))
	}
	if p.ProfilePhoto.Storage == models.PhotoStorageInline {
		fmt.Fprintf(w, "  Photo:     uploaded (%s)\n", p.ProfilePhoto.Key)
	}
}

func (c *cli) printPosts(w io.Writer, posts services.PostList) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "[%s] %s (%s)\n", p.Category, p.Title, p.ID)
		fmt.Fprintf(w, "  %s\n", p.Description)
		if p.CreatedAt != "" {
			fmt.Fprintf(w, "  posted %s\n", c.ago(p.CreatedAt))
		}
	}
}

func (c *cli) printRequests(w io.Writer, requests []models.ConnectionRequest) {
	if len(requests) == 0 {
		fmt.Fprintln(w, "No pending requests")
		return
	}
	for _, r := range requests {
		fmt.Fprintf(w, "%s from %s, %s\n", r.ID, r.FromUserID, c.ago(r.CreatedAt))
		fmt.Fprintf(w, "  %q\n", r.Message)
	}
}
