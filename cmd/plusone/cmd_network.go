package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/services"
)

func (c *cli) feedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "List recently joined alumni and your connection status with each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			entries, err := services.NewFeedService(c.client, c.connections()).Feed(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome back, %s\n\n", user.DisplayName())
			if len(entries) == 0 {
				fmt.Fprintln(out, "Nobody new yet")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s [%s] (%s)\n", fullName(e.User.FirstName, e.User.LastName), e.Status.Label(), e.User.UserID)
				if line := jobLine(e.User.Profile.Job); line != "" {
					fmt.Fprintf(out, "  %s\n", line)
				}
				if e.User.CreatedAt != "" {
					fmt.Fprintf(out, "  joined %s\n", c.ago(e.User.CreatedAt))
				}
			}
			return nil
		},
	}
}

func (c *cli) connectCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "connect <user-id>",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			connections := c.connections()
			req, err := connections.RequestConnection(cmd.Context(), user.UserID, args[0], message)
			if err != nil {
				return fail(err)
			}
			status := connections.Status(cmd.Context(), user.UserID, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s sent (%s)\n", req.ID, status.Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Note to include with the request (required)")
	return cmd
}

func (c *cli) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <request-id>",
		Short: "Accept an incoming connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			page, err := c.myPage().Accept(cmd.Context(), user.UserID, args[0])
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted. %s, %s pending.\n",
				plural(page.ConnectionsCount, "connection"), plural(page.RequestsCount, "request"))
			return nil
		},
	}
}

func (c *cli) rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Decline an incoming connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			page, err := c.myPage().Reject(cmd.Context(), user.UserID, args[0])
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Declined. %s pending.\n", plural(page.RequestsCount, "request"))
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id>",
		Short: "Show your connection status with another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			status := c.connections().Status(cmd.Context(), user.UserID, args[0])
			fmt.Fprintln(cmd.OutOrStdout(), status.Label())
			return nil
		},
	}
}

func (c *cli) requestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List connection requests waiting for you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			requests, err := c.connections().PendingRequests(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}
			c.printRequests(cmd.OutOrStdout(), requests)
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <interest...>",
		Short: "Find alumni by interest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.user(); err != nil {
				return err
			}
			query := strings.Join(args, " ")
			results, err := services.NewSearchService(c.client).Search(cmd.Context(), query)
			if err != nil {
				return fail(err)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No one matches %q\n", strings.TrimSpace(query))
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s (%s)\n", fullName(r.FirstName, r.LastName), r.ID)
				fmt.Fprintf(out, "  %s | %s\n", r.Headline(), plural(r.NumConnections, "connection"))
				if len(r.Interests) > 0 {
					fmt.Fprintf(out, "  %s\n", strings.Join(r.Interests, ", "))
				}
			}
			return nil
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your page: profile, counts, posts and requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			page, err := c.myPage().Load(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}
			c.printMyPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
}

func (c *cli) printMyPage(w io.Writer, page *services.MyPage) {
	fmt.Fprintln(w, fullName(page.FirstName, page.LastName))
	printProfile(w, page.Profile)
	fmt.Fprintf(w, "\n%s | %s | %s\n",
		plural(page.ConnectionsCount, "connection"),
		plural(page.RequestsCount, "request"),
		plural(page.PostsCount, "post"))

	fmt.Fprintln(w, "\nPosts")
	c.printPosts(w, page.Posts)
	fmt.Fprintln(w, "\nRequests")
	c.printRequests(w, page.Requests)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
