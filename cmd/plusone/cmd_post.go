package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

var errPostNotFound = errors.New("post not found")

func (c *cli) postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage your posts",
	}
	cmd.AddCommand(c.postListCmd(), c.postCreateCmd(), c.postEditCmd(), c.postDeleteCmd())
	return cmd
}

func (c *cli) postListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			posts, err := services.NewPostService(c.client).List(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}
			c.printPosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}
}

// postFields binds the flags shared by create and edit.
type postFields struct {
	category    string
	title       string
	description string
}

func (p *postFields) bind(cmd *cobra.Command) {
	names := make([]string, 0, len(models.PostCategories))
	for _, c := range models.PostCategories {
		names = append(names, string(c))
	}
	cmd.Flags().StringVar(&p.category, "category", "", "One of: "+strings.Join(names, ", "))
	cmd.Flags().StringVar(&p.title, "title", "", "Title")
	cmd.Flags().StringVar(&p.description, "description", "", "Description")
}

// parseCategory matches case-insensitively; unknown input is passed through
// for validation to reject.
func parseCategory(s string) models.PostCategory {
	s = strings.TrimSpace(s)
	for _, c := range models.PostCategories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return models.PostCategory(s)
}

func (c *cli) postCreateCmd() *cobra.Command {
	var fields postFields
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			draft := models.Post{
				Category:    parseCategory(fields.category),
				Title:       fields.title,
				Description: fields.description,
			}
			post, err := services.NewPostService(c.client).Create(cmd.Context(), user.UserID, draft)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created post %s\n", post.ID)
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func (c *cli) postEditCmd() *cobra.Command {
	var fields postFields
	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Change a post; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			posts := services.NewPostService(c.client)
			list, err := posts.List(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}

			var draft *models.Post
			for i := range list {
				if list[i].ID == args[0] {
					draft = &list[i]
					break
				}
			}
			if draft == nil {
				return errPostNotFound
			}
			f := cmd.Flags()
			if f.Changed("category") {
				draft.Category = parseCategory(fields.category)
			}
			if f.Changed("title") {
				draft.Title = fields.title
			}
			if f.Changed("description") {
				draft.Description = fields.description
			}

			post, err := posts.Update(cmd.Context(), user.UserID, args[0], *draft)
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated post %s\n\n", post.ID)
			c.printPosts(out, list.Upsert(*post))
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func (c *cli) postDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			page, err := c.myPage().Load(cmd.Context(), user.UserID)
			if err != nil {
				return fail(err)
			}
			if err := c.myPage().DeletePost(cmd.Context(), page, args[0]); err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted. %s left.\n", plural(page.PostsCount, "post"))
			return nil
		},
	}
}
