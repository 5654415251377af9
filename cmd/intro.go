package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviews-cli/reviews"
)

func newIntroCmd() *cobra.Command {
	introCmd := &cobra.Command{
		Use:   "intro",
		Short: "Create and list student intros",
	}

	var name, message string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Introduce yourself",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleCreateIntro(cmd.Context(), name, message)
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "your name")
	createCmd.Flags().StringVar(&message, "message", "", "intro message")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every student intro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleListIntros(cmd.Context())
		},
	}

	introCmd.AddCommand(createCmd, listCmd)
	return introCmd
}

func handleCreateIntro(ctx context.Context, name, message string) error {
	client, err := cur.introClient()
	if err != nil {
		return err
	}
	signer, err := cur.signer()
	if err != nil {
		return err
	}

	if err := askString(&name, "Name:", true); err != nil {
		return err
	}
	if err := askMultiline(&message, "Message:"); err != nil {
		return err
	}

	program := client.Program()
	ix, err := program.CreateRecordInstruction(signer.PublicKey(), reviews.CreateRecord{
		Title: name,
		Body:  message,
	})
	if err != nil {
		return fmt.Errorf("failed to create intro instruction: %w", err)
	}

	fmt.Println(promptStyle.Render("Submitting intro..."))
	ctx, cancel := cur.submitContext(ctx)
	defer cancel()
	sig, err := cur.submitter(signer).Submit(ctx, ix)
	if err != nil {
		return fmt.Errorf("intro submission failed: %w", err)
	}

	cur.log.Info("intro created", zap.Stringer("signature", sig))
	fmt.Println(successStyle.Render("\n✅ Intro submitted!"))
	fmt.Println(labelStyle.Render("Transaction") + explorerURL(sig))
	return nil
}

func handleListIntros(ctx context.Context) error {
	client, err := cur.introClient()
	if err != nil {
		return err
	}

	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	records, err := client.FetchReviews(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch intros: %w", err)
	}
	printRecords("Student Intros", records)
	return nil
}
