package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviews-cli/reviews"
)

func newCommentCmd() *cobra.Command {
	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Add and list comments on a movie review",
	}

	var review, text string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Comment on a review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleAddComment(cmd.Context(), review, text)
		},
	}
	addCmd.Flags().StringVar(&review, "review", "", "review account address")
	addCmd.Flags().StringVar(&text, "text", "", "comment text")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the comments on a review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleListComments(cmd.Context(), review)
		},
	}
	listCmd.Flags().StringVar(&review, "review", "", "review account address")

	commentCmd.AddCommand(addCmd, listCmd)
	return commentCmd
}

func handleAddComment(ctx context.Context, review, text string) error {
	signer, err := cur.signer()
	if err != nil {
		return err
	}
	record, err := parsePublicKey(review, "Review address:")
	if err != nil {
		return err
	}
	if err := askString(&text, "Comment:", true); err != nil {
		return err
	}

	client := cur.reviewClient()

	// One deadline covers the counter read and the submission.
	ctx, cancel := cur.submitContext(ctx)
	defer cancel()

	ix, err := client.CreateCommentInstruction(ctx, signer.PublicKey(), record, text)
	if err != nil {
		return fmt.Errorf("failed to create comment instruction: %w", err)
	}

	fmt.Println(promptStyle.Render("Submitting comment..."))
	sig, err := cur.submitter(signer).Submit(ctx, ix)
	if err != nil {
		return fmt.Errorf("comment submission failed: %w", err)
	}

	cur.log.Info("comment created", zap.Stringer("review", record), zap.Stringer("signature", sig))
	fmt.Println(successStyle.Render("\n✅ Comment submitted!"))
	fmt.Println(labelStyle.Render("Transaction") + explorerURL(sig))
	return nil
}

func handleListComments(ctx context.Context, review string) error {
	record, err := parsePublicKey(review, "Review address:")
	if err != nil {
		return err
	}

	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	comments, err := cur.reviewClient().FetchComments(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}
	printComments(comments)
	return nil
}

func printComments(comments []*reviews.Comment) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Comments (%d)", len(comments))))
	for _, c := range comments {
		fmt.Println(infoStyle.Render(fmt.Sprintf("#%d", c.Index)) + " " + c.Text)
	}
}
