package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"reviews-cli/codec"
	"reviews-cli/reviews"
)

var builtinLayouts = []codec.Schema{
	reviews.ReviewInstruction,
	reviews.IntroInstruction,
	reviews.CommentInstruction,
	reviews.ReviewAccountLayout,
	reviews.IntroAccountLayout,
	reviews.AccountMetadataLayout,
	reviews.CommentAccountLayout,
}

func newLayoutCmd() *cobra.Command {
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and apply binary layouts",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the built-in layouts as JSON documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs := make([]codec.LayoutDocument, 0, len(builtinLayouts))
			for _, s := range builtinLayouts {
				docs = append(docs, s.Document())
			}
			out, err := json.MarshalIndent(docs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	var file, data, account string
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode base64 data or an account with a layout file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleDecodeLayout(cmd.Context(), file, data, account)
		},
	}
	decodeCmd.Flags().StringVar(&file, "file", "", "layout JSON document")
	decodeCmd.Flags().StringVar(&data, "data", "", "base64 data to decode")
	decodeCmd.Flags().StringVar(&account, "account", "", "account whose data to decode")
	_ = decodeCmd.MarkFlagRequired("file")

	layoutCmd.AddCommand(showCmd, decodeCmd)
	return layoutCmd
}

func handleDecodeLayout(ctx context.Context, file, data, account string) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}
	schema, err := codec.ParseLayout(raw)
	if err != nil {
		return err
	}

	var buf []byte
	switch {
	case data != "" && account != "":
		return errors.New("pass either --data or --account, not both")
	case data != "":
		if buf, err = base64.StdEncoding.DecodeString(data); err != nil {
			return fmt.Errorf("invalid base64 data: %w", err)
		}
	case account != "":
		addr, err := parsePublicKey(account, "Account:")
		if err != nil {
			return err
		}
		ctx, cancel := cur.readContext(ctx)
		defer cancel()
		if buf, err = cur.ledger.GetAccountInfo(ctx, addr); err != nil {
			return err
		}
		if buf == nil {
			return &reviews.AccountNotFoundError{Address: addr, Kind: "account"}
		}
	default:
		return errors.New("one of --data or --account is required")
	}

	rec, err := codec.Decode(schema, buf)
	if err != nil {
		return err
	}
	printFields(schema.Name, rec)
	return nil
}

func printFields(title string, rec codec.Record) {
	fmt.Println(titleStyle.Render(title))
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(labelStyle.Render(k) + fmt.Sprintf("%v", rec[k]))
	}
}
