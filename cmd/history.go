package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"reviews-cli/reviews"
	"reviews-cli/storage"
)

const (
	reviewProgramName = "review"
	introProgramName  = "intro"
)

func newHistoryCmd() *cobra.Command {
	var (
		program string
		limit   int
	)
	historyCmd := &cobra.Command{
		Use:   "history [address]",
		Short: "Show recent program transactions touching an address (default: your wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr string
			if len(args) == 1 {
				addr = args[0]
			}
			return handleHistory(cmd.Context(), addr, program, limit)
		},
	}
	historyCmd.Flags().StringVar(&program, "program-kind", reviewProgramName, "program to decode: review or intro")
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of transactions to fetch")
	return historyCmd
}

func handleHistory(ctx context.Context, addr, program string, limit int) error {
	var client *reviews.Client
	switch program {
	case reviewProgramName:
		client = cur.reviewClient()
	case introProgramName:
		var err error
		if client, err = cur.introClient(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown program %q, want %s or %s", program, reviewProgramName, introProgramName)
	}

	target, err := historyTarget(addr, client.Program().ID, cur.signer)
	if err != nil {
		return err
	}

	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	fmt.Println(promptStyle.Render(fmt.Sprintf("Fetching history for %s...", target)))
	entries, err := client.History(ctx, target, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	printHistory(client.Program(), entries)
	return nil
}

// historyTarget picks the address to scan: addr when given, else the signer,
// else the program itself when no keypair is configured at all.
func historyTarget(addr string, program solana.PublicKey, signer func() (solana.PrivateKey, error)) (solana.PublicKey, error) {
	if addr != "" {
		return parsePublicKey(addr, "Address:")
	}
	key, err := signer()
	if errors.Is(err, storage.ErrNoKeypair) {
		return program, nil
	}
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

func printHistory(program reviews.Program, entries []reviews.HistoryEntry) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("History (%d transactions)", len(entries))))
	for _, e := range entries {
		status := successStyle.Render("ok")
		if e.Failed {
			status = warningStyle.Render("failed")
		}
		when := "unknown time"
		if !e.BlockTime.IsZero() {
			when = e.BlockTime.Local().Format(time.RFC822)
		}
		fmt.Printf("%s %s %s\n", infoStyle.Render(when), status, e.Signature)

		if e.Err != nil {
			fmt.Println("  " + warningStyle.Render(fmt.Sprintf("could not fetch: %v", e.Err)))
			continue
		}
		for _, ix := range e.Instructions {
			fmt.Println("  " + describeInstruction(program, ix))
		}
	}
}

func describeInstruction(program reviews.Program, ix reviews.DecodedInstruction) string {
	if ix.Err != nil {
		return warningStyle.Render(fmt.Sprintf("#%d variant %d: %v", ix.Index, ix.Variant, ix.Err))
	}

	name := fmt.Sprintf("variant %d", ix.Variant)
	switch ix.Variant {
	case reviews.VariantCreateRecord:
		name = "create " + program.Name
	case reviews.VariantCreateComment:
		name = "create comment"
	}

	keys := make([]string, 0, len(ix.Fields))
	for k := range ix.Fields {
		if k != "variant" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ix.Fields[k]))
	}
	return fmt.Sprintf("#%d %s: %s", ix.Index, name, strings.Join(parts, " "))
}
