package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviews-cli/reviews"
)

type reviewInput struct {
	title       string
	rating      string
	description string
}

func newReviewCmd() *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Create and list movie reviews",
	}

	var in reviewInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new movie review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleCreateReview(cmd.Context(), in)
		},
	}
	createCmd.Flags().StringVar(&in.title, "title", "", "movie title")
	createCmd.Flags().StringVar(&in.rating, "rating", "", "rating from 1 to 5")
	createCmd.Flags().StringVar(&in.description, "description", "", "review text")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every review stored by the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleListReviews(cmd.Context())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <address>",
		Short: "Show one review with its comments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr string
			if len(args) == 1 {
				addr = args[0]
			}
			return handleShowReview(cmd.Context(), addr)
		},
	}

	reviewCmd.AddCommand(createCmd, listCmd, showCmd)
	return reviewCmd
}

func handleCreateReview(ctx context.Context, in reviewInput) error {
	signer, err := cur.signer()
	if err != nil {
		return err
	}

	if err := askString(&in.title, "Movie title:", true); err != nil {
		return err
	}
	var rating uint8
	if in.rating == "" {
		if rating, err = askRating(); err != nil {
			return err
		}
	} else if rating, err = parseRating(in.rating); err != nil {
		return err
	}
	if err := askMultiline(&in.description, "Review:"); err != nil {
		return err
	}

	client := cur.reviewClient()
	program := client.Program()
	ix, err := program.CreateRecordInstruction(signer.PublicKey(), reviews.CreateRecord{
		Title:  in.title,
		Rating: reviews.Rating(rating),
		Body:   in.description,
	})
	if err != nil {
		return fmt.Errorf("failed to create review instruction: %w", err)
	}
	record, err := program.RecordAddress(signer.PublicKey(), in.title)
	if err != nil {
		return err
	}

	fmt.Println(promptStyle.Render("Submitting review..."))
	ctx, cancel := cur.submitContext(ctx)
	defer cancel()
	sig, err := cur.submitter(signer).Submit(ctx, ix)
	if err != nil {
		return fmt.Errorf("review submission failed: %w", err)
	}

	cur.log.Info("review created", zap.Stringer("record", record.Key), zap.Stringer("signature", sig))
	fmt.Println(successStyle.Render("\n✅ Review submitted!"))
	fmt.Println(labelStyle.Render("Review") + record.Key.String())
	fmt.Println(labelStyle.Render("Transaction") + explorerURL(sig))
	return nil
}

func handleListReviews(ctx context.Context) error {
	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	records, err := cur.reviewClient().FetchReviews(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}
	printRecords("Movie Reviews", records)
	return nil
}

func handleShowReview(ctx context.Context, addr string) error {
	record, err := parsePublicKey(addr, "Review address:")
	if err != nil {
		return err
	}

	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	client := cur.reviewClient()
	rec, err := client.FetchRecord(ctx, record)
	if err != nil {
		return err
	}
	printRecords("Review", []*reviews.Record{rec})

	comments, err := client.FetchComments(ctx, record)
	if err != nil {
		return err
	}
	printComments(comments)
	return nil
}

func printRecords(title string, records []*reviews.Record) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(records))))
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Title < records[j].Title
	})
	for _, r := range records {
		fmt.Println(labelStyle.Render("Title") + r.Title)
		if r.Rating != nil {
			fmt.Println(labelStyle.Render("Rating") + stars(*r.Rating))
		}
		fmt.Println(labelStyle.Render("By") + r.Owner.String())
		fmt.Println(labelStyle.Render("Address") + r.Address.String())
		fmt.Println(promptStyle.Render(r.Body))
		fmt.Println()
	}
}

func stars(n uint8) string {
	s := ""
	for i := uint8(0); i < 5; i++ {
		if i < n {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}
