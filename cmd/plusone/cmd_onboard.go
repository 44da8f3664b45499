package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/clisession"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

func (c *cli) onboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Fill in your profile, one step at a time",
		Long: `Onboarding has four steps: Demographics, Career, Interests and
Profile Photo. Edits are kept locally until "next" or "finish" saves
them to PlusOne.`,
	}
	cmd.AddCommand(c.onboardShowCmd(), c.onboardNextCmd(), c.onboardBackCmd(), c.onboardFinishCmd())
	return cmd
}

// tracker asks the backend first, so a finished onboarding is never reopened
// by a stale local draft, then resumes from the draft when there is one.
func (c *cli) tracker(ctx context.Context, user *models.CurrentUser) (*services.OnboardingTracker, error) {
	t := services.NewOnboardingTracker(c.client, user.UserID)
	if err := t.Load(ctx); err != nil {
		return nil, fail(err)
	}
	draft := c.state.Onboarding
	if draft == nil {
		return t, nil
	}
	if t.Done() {
		c.state.Onboarding = nil
		if err := c.save(); err != nil {
			return nil, err
		}
		return t, nil
	}
	t.Restore(draft.Step, draft.Profile)
	return t, nil
}

func (c *cli) keepDraft(t *services.OnboardingTracker) error {
	c.state.Onboarding = &clisession.OnboardingDraft{Step: t.Step(), Profile: t.Profile()}
	return c.save()
}

func (c *cli) onboardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current step and your answers so far",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			t, err := c.tracker(cmd.Context(), user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if t.Done() {
				fmt.Fprintln(out, "Onboarding complete")
				printProfile(out, t.Profile())
				return nil
			}
			if err := c.keepDraft(t); err != nil {
				return err
			}
			printStep(out, t)
			printProfile(out, t.Profile())
			printStepOptions(out, t.Step())
			return nil
		},
	}
}

func (c *cli) onboardBackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the previous step without saving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			t, err := c.tracker(cmd.Context(), user)
			if err != nil {
				return err
			}
			t.Back()
			if err := c.keepDraft(t); err != nil {
				return err
			}
			printStep(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func (c *cli) onboardNextCmd() *cobra.Command {
	var edits profileEdits
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Apply edits, save and advance to the next step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.saveOnboarding(cmd, &edits, false)
		},
	}
	edits.bind(cmd)
	return cmd
}

func (c *cli) onboardFinishCmd() *cobra.Command {
	var edits profileEdits
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Apply edits, save and mark onboarding complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.saveOnboarding(cmd, &edits, true)
		},
	}
	edits.bind(cmd)
	return cmd
}

func (c *cli) saveOnboarding(cmd *cobra.Command, edits *profileEdits, finish bool) error {
	user, err := c.user()
	if err != nil {
		return err
	}
	t, err := c.tracker(cmd.Context(), user)
	if err != nil {
		return err
	}
	if t.Done() {
		return fail(services.ErrOnboardingComplete)
	}
	if err := edits.apply(cmd, t, c); err != nil {
		return fail(err)
	}
	if err := services.ValidateProfile(t.Profile()); err != nil {
		return fail(err)
	}

	if finish {
		err = t.Finish(cmd.Context())
	} else {
		err = t.Next(cmd.Context())
	}
	if err != nil {
		// Local edits survive a failed save.
		if saveErr := c.keepDraft(t); saveErr != nil {
			return saveErr
		}
		return fail(err)
	}

	out := cmd.OutOrStdout()
	if finish {
		c.state.Onboarding = nil
		if err := c.save(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Onboarding complete. Welcome to PlusOne!")
		return nil
	}
	if err := c.keepDraft(t); err != nil {
		return err
	}
	fmt.Fprint(out, "Saved. ")
	printStep(out, t)
	return nil
}

// profileEdits are the flags shared by "onboard next" and "onboard finish".
// Only flags the user set are applied.
type profileEdits struct {
	gender     string
	age        int
	city       string
	state      string
	jobTitle   string
	company    string
	interests  []string
	custom     []string
	photo      string
	resetPhoto bool
}

func (e *profileEdits) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&e.gender, "gender", "", "male, female, non-binary, other or prefer-not-to-say")
	f.IntVar(&e.age, "age", 0, "Age (13-120)")
	f.StringVar(&e.city, "city", "", "City; known cities fill in the state")
	f.StringVar(&e.state, "state", "", "Two-letter US state code")
	f.StringVar(&e.jobTitle, "job-title", "", "Job title")
	f.StringVar(&e.company, "company", "", "Company name")
	f.StringSliceVar(&e.interests, "interest", nil, "Toggle an interest (repeatable)")
	f.StringSliceVar(&e.custom, "custom-interest", nil, "Add an interest of your own (repeatable)")
	f.StringVar(&e.photo, "photo", "", "Path to a PNG, JPEG, GIF or WebP profile photo")
	f.BoolVar(&e.resetPhoto, "reset-photo", false, "Go back to the default avatar")
}

func (e *profileEdits) apply(cmd *cobra.Command, t *services.OnboardingTracker, c *cli) error {
	f := cmd.Flags()
	if f.Changed("gender") {
		var gender *models.Gender
		if v := strings.TrimSpace(e.gender); v != "" {
			g := models.Gender(strings.ToUpper(strings.ReplaceAll(v, "-", "_")))
			gender = &g
		}
		if err := t.SetGender(gender); err != nil {
			return err
		}
	}
	if f.Changed("age") {
		age := e.age
		if err := t.SetAge(&age); err != nil {
			return err
		}
	}
	if f.Changed("city") {
		t.SetCity(e.city)
	}
	if f.Changed("state") {
		if err := t.SetState(e.state); err != nil {
			return err
		}
	}
	if f.Changed("job-title") || f.Changed("company") {
		job := t.Profile().Job
		if f.Changed("job-title") {
			job.Title = strings.TrimSpace(e.jobTitle)
		}
		if f.Changed("company") {
			job.CompanyName = strings.TrimSpace(e.company)
		}
		t.SetJob(job.Title, job.CompanyName, job.CompanyID)
	}
	for _, interest := range e.interests {
		t.ToggleInterest(interest)
	}
	for _, interest := range e.custom {
		t.AddCustomInterest(interest)
	}
	if e.resetPhoto {
		t.ResetPhoto()
	}
	if e.photo != "" {
		file, err := os.Open(e.photo)
		if err != nil {
			return fmt.Errorf("opening photo: %w", err)
		}
		defer func() { _ = file.Close() }()
		photo, err := services.PreparePhoto(file, c.now())
		if err != nil {
			return err
		}
		t.SetPhoto(photo)
	}
	return nil
}

func printStep(w io.Writer, t *services.OnboardingTracker) {
	step := t.CurrentStep()
	fmt.Fprintf(w, "Step %d of %d: %s (%d%%)\n", step.Number, services.LastOnboardingStep, step.Title, t.Progress())
	fmt.Fprintf(w, "  %s\n", step.Subtitle)
}

func printStepOptions(w io.Writer, step int) {
	switch step {
	case 1:
		labels := make([]string, 0, len(models.Genders))
		for _, g := range models.Genders {
			labels = append(labels, strings.ToLower(strings.ReplaceAll(string(g), "_", "-")))
		}
		fmt.Fprintf(w, "\nOptions: --gender %s, --age\n", strings.Join(labels, "|"))
	case 2:
		cities := make([]string, 0, len(services.CityOptions))
		for _, loc := range services.CityOptions {
			cities = append(cities, loc.City)
		}
		fmt.Fprintf(w, "\nKnown cities: %s\nOptions: --city, --state, --job-title, --company\n", strings.Join(cities, ", "))
	case 3:
		fmt.Fprintf(w, "\nInterests: %s\nOptions: --interest, --custom-interest\n", strings.Join(services.InterestOptions, ", "))
	case 4:
		fmt.Fprintln(w, "\nOptions: --photo <file>, --reset-photo")
	}
}
