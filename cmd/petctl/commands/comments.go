package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func commentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Local comment threads per listing",
		Long: `Comments are stored on this machine only; the listing service has no
comment API. Use them as private notes or a simulated conversation with a
poster.`,
	}
	cmd.AddCommand(
		commentsListCmd(),
		commentsAddCmd(),
		commentsDeleteCmd(),
	)
	return cmd
}

func commentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <listing-id>",
		Short: "Show the comment thread for a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			thread := commentStore.ListByListing(id)
			return printResult(thread, func() error {
				if len(thread) == 0 {
					fmt.Println("No comments")
					return nil
				}
				for _, c := range thread {
					fmt.Printf("[%s] %s (%s)\n  %s\n",
						c.CreatedAt.Format("2006-01-02 15:04"),
						c.Author,
						truncate(c.ID, 8),
						c.Text,
					)
				}
				return nil
			})
		},
	}
}

func commentsAddCmd() *cobra.Command {
	var text, author string

	cmd := &cobra.Command{
		Use:   "add <listing-id>",
		Short: "Add a comment to a listing's local thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			var authorID int64
			if author == "" {
				if user := client.Session().User(); user != nil {
					authorID = user.ID
					author = user.Username
					if author == "" {
						author = user.Email
					}
				}
			}
			comment, err := commentStore.Add(id, author, authorID, text)
			if err != nil {
				return err
			}
			fmt.Printf("Comment %s added\n", truncate(comment.ID, 8))
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "comment text")
	cmd.Flags().StringVar(&author, "author", "", "author name (defaults to the logged-in user)")
	return cmd
}

func commentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <listing-id> <comment-id>",
		Short: "Delete a comment from a listing's local thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseListingID(args[0])
			if err != nil {
				return err
			}
			if err := commentStore.Delete(id, args[1]); err != nil {
				return err
			}
			fmt.Println("Comment deleted")
			return nil
		},
	}
}
