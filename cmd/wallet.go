package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"reviews-cli/storage"
)

func newWalletCmd() *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage signing wallets",
	}

	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of the active signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return viewAddress()
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the SOL balance of the active signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return viewBalance(cmd.Context())
		},
	}

	var out string
	newCmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Generate a wallet and save it as a profile, or to a keypair file with --out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return handleNewWallet(name, out)
		},
	}
	newCmd.Flags().StringVar(&out, "out", "", "write a solana-keygen keypair file instead of a profile")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wallet profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listProfiles()
		},
	}

	var keypair string
	importCmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Save an existing keypair file as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importWallet(args[0], keypair)
		},
	}
	importCmd.Flags().StringVar(&keypair, "from", "", "keypair file to import")

	var initPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the solana-keygen keypair file if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initKeypair(initPath)
		},
	}
	initCmd.Flags().StringVar(&initPath, "path", "", "keypair file (default ~/.config/solana/id.json)")

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a wallet profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteProfile(args[0])
		},
	}

	walletCmd.AddCommand(addressCmd, balanceCmd, initCmd, newCmd, listCmd, importCmd, deleteCmd)
	return walletCmd
}

func handleWalletManagement(ctx context.Context) error {
	menu := &survey.Select{
		Message: promptStyle.Render("Wallet Management:"),
		Options: []string{"View Address", "View Balance", "List Profiles", "Create New Profile", "Back"},
	}
	var choice string
	if err := survey.AskOne(menu, &choice); err != nil {
		return err
	}

	switch choice {
	case "View Address":
		return viewAddress()
	case "View Balance":
		return viewBalance(ctx)
	case "List Profiles":
		return listProfiles()
	case "Create New Profile":
		return handleNewWallet("", "")
	}
	return nil
}

func viewAddress() error {
	signer, err := cur.signer()
	if err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("Address") + signer.PublicKey().String())
	return nil
}

func viewBalance(ctx context.Context) error {
	signer, err := cur.signer()
	if err != nil {
		return err
	}

	ctx, cancel := cur.readContext(ctx)
	defer cancel()

	lamports, err := cur.ledger.Balance(ctx, signer.PublicKey())
	if err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("Balance") + fmt.Sprintf("%.9f SOL", float64(lamports)/float64(solana.LAMPORTS_PER_SOL)))
	if lamports == 0 {
		fmt.Println(warningStyle.Render("Wallet is empty. Fund it with a devnet airdrop before submitting."))
	}
	return nil
}

func handleNewWallet(name, out string) error {
	key := solana.NewWallet().PrivateKey

	if out != "" {
		if _, err := os.Stat(out); err == nil {
			ok, err := confirm(fmt.Sprintf("%s exists. Overwrite it?", out))
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		if err := storage.SaveKeypairFile(out, key); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✅ Keypair written to " + out))
		fmt.Println(labelStyle.Render("Address") + key.PublicKey().String())
		return nil
	}

	if err := askString(&name, "Profile name:", true); err != nil {
		return err
	}

	db, err := cur.walletStore()
	if err != nil {
		return err
	}
	defer db.Close()

	w, err := db.SaveWallet(name, key)
	if errors.Is(err, storage.ErrWalletExists) {
		return fmt.Errorf("profile %q already exists", name)
	}
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Profile %q created.", w.Name)))
	fmt.Println(labelStyle.Render("Address") + w.PublicKey().String())
	fmt.Println(promptStyle.Render(fmt.Sprintf("Use it with --profile %s", w.Name)))
	return nil
}

func importWallet(name, path string) error {
	if err := askString(&path, "Keypair file:", true); err != nil {
		return err
	}
	key, err := storage.LoadKeypairFile(path)
	if err != nil {
		return err
	}

	db, err := cur.walletStore()
	if err != nil {
		return err
	}
	defer db.Close()

	w, err := db.SaveWallet(name, key)
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Imported %s as %q.", w.PublicKey(), w.Name)))
	return nil
}

func listProfiles() error {
	db, err := cur.walletStore()
	if err != nil {
		return err
	}
	defer db.Close()

	names, err := db.GetAllWalletNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println(promptStyle.Render("No profiles yet. Create one with `wallet new <name>`."))
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Profiles (%s)", db.Path())))
	for _, name := range names {
		w, err := db.GetWallet(name)
		if err != nil {
			fmt.Println(labelStyle.Render(name) + warningStyle.Render(err.Error()))
			continue
		}
		fmt.Println(labelStyle.Render(name) + w.PublicKey().String())
	}
	return nil
}

func initKeypair(path string) error {
	if path == "" {
		var err error
		if path, err = storage.DefaultKeypairPath(); err != nil {
			return err
		}
	}
	key, created, err := storage.LoadOrCreateKeypair(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Println(successStyle.Render("✅ New keypair written to " + path))
	} else {
		fmt.Println(promptStyle.Render("Using existing keypair " + path))
	}
	fmt.Println(labelStyle.Render("Address") + key.PublicKey().String())
	return nil
}

func deleteProfile(name string) error {
	ok, err := confirm(fmt.Sprintf("Delete profile %q? Its key cannot be recovered.", name))
	if err != nil || !ok {
		return err
	}

	db, err := cur.walletStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteWallet(name); err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Profile %q deleted.", name)))
	return nil
}
