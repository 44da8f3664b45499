// Command fakebackend serves the in-memory PlusOne API for local development.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/fakebackend"
	"github.com/plusone-alumni/plusone/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr string
		seed bool
	)
	cmd := &cobra.Command{
		Use:          "fakebackend",
		Short:        "Run an in-memory PlusOne backend on /api",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := fakebackend.New()
			if seed {
				seedUsers(server)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				logging.Info("Fake backend shutting down...")
				if err := server.App().Shutdown(); err != nil {
					logging.Error("Could not shut down", map[string]interface{}{"error": err.Error()})
				}
			}()

			logging.Info("Fake backend listening", map[string]interface{}{"addr": addr, "seeded": seed})
			if err := server.App().Listen(addr); err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create a few finished demo accounts (password: secret1)")
	return cmd
}

func seedUsers(server *fakebackend.Server) {
	for _, u := range []struct{ email, first, last string }{
		{"maya@vanderbilt.edu", "Maya", "Patel"},
		{"jordan@vanderbilt.edu", "Jordan", "Reyes"},
		{"sam@vanderbilt.edu", "Sam", "Okafor"},
	} {
		id := server.AddUser(u.email, "secret1", u.first, u.last)
		server.SetOnboarding(id, 4, true)
	}
}
