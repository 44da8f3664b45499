// Command plusone is a terminal client for the PlusOne alumni network.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/clisession"
	"github.com/plusone-alumni/plusone/internal/config"
	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

var errNotSignedIn = errors.New(`not signed in; run "plusone login" first`)

// cli carries the flags and the per-invocation dependencies built from them.
type cli struct {
	apiURL      string
	sessionFile string
	timeout     time.Duration
	verbose     bool

	client *backend.Client
	store  *clisession.Store
	state  *clisession.State
	now    func() time.Time
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	c := &cli{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "plusone",
		Short: "PlusOne alumni network from the terminal",
		Long: `PlusOne connects Vanderbilt alumni.

Sign up or log in, finish onboarding, then browse the feed, send
connection requests, manage posts and search people by interest.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	rootCmd.PersistentFlags().StringVar(&c.apiURL, "api", cfg.Backend.BaseURL, "PlusOne backend base URL (or set PLUSONE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&c.sessionFile, "session", cfg.CLI.SessionFile, "Session file (or set PLUSONE_SESSION_FILE)")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", cfg.Backend.Timeout, "Backend request timeout")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.feedCmd(),
		c.connectCmd(),
		c.acceptCmd(),
		c.rejectCmd(),
		c.statusCmd(),
		c.requestsCmd(),
		c.onboardCmd(),
		c.postCmd(),
		c.searchCmd(),
		c.meCmd(),
	)
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	level := logging.LevelWarn
	if c.verbose {
		level = logging.LevelDebug
	}
	logging.Default.SetOutput(cmd.ErrOrStderr()).SetLevel(level)

	c.client = backend.New(c.apiURL, c.timeout)
	c.store = clisession.NewStore(c.sessionFile)
	state, err := c.store.Load()
	if err != nil {
		return err
	}
	c.state = state
	logging.Debug("Session loaded", map[string]interface{}{
		"path":      c.store.Path(),
		"signed_in": state.SignedIn(),
	})
	return nil
}

func (c *cli) user() (*models.CurrentUser, error) {
	if !c.state.SignedIn() {
		return nil, errNotSignedIn
	}
	return c.state.User, nil
}

func (c *cli) save() error {
	return c.store.Save(c.state)
}

func (c *cli) connections() *services.ConnectionService {
	return services.NewConnectionService(c.client)
}

func (c *cli) myPage() *services.MyPageService {
	connections := c.connections()
	return services.NewMyPageService(c.client, connections, services.NewPostService(c.client))
}

// fail turns a service error into the message-only error printed to the
// user; details go to the debug log.
func fail(err error) error {
	if err == nil {
		return nil
	}
	logging.Debug("Command failed", map[string]interface{}{"error": err.Error()})
	if errors.Is(err, errNotSignedIn) {
		return err
	}
	return errors.New(services.Message(err))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
