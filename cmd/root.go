package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v   = viper.New()
	cur *app
)

var rootCmd = &cobra.Command{
	Use:   "reviews-cli",
	Short: "reviews-cli writes and reads movie reviews, comments and student intros on Solana.",
	Long: `A command-line client for the movie review and student intro programs.
Run without a subcommand for the interactive menu.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              run,
}

func init() {
	setDefaults(v)
	bindFlags(rootCmd, v)

	rootCmd.AddCommand(
		newReviewCmd(),
		newCommentCmd(),
		newIntroCmd(),
		newHistoryCmd(),
		newWalletCmd(),
		newLayoutCmd(),
	)
}

func setup(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(v, configFile)
	if err != nil {
		return err
	}
	log, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.Debug("configuration loaded", zapConfig(cfg)...)
	cur = newApp(cfg, log)
	return nil
}

// run is the main entry point for the interactive CLI.
func run(cmd *cobra.Command, _ []string) error {
	myFigure := figure.NewFigure("REVIEWS", "larry3d", true)
	fmt.Println(titleStyle.Render(myFigure.String()))
	fmt.Println(promptStyle.Render(fmt.Sprintf("RPC: %s", cur.cfg.RPCEndpoint)))
	fmt.Println(promptStyle.Render(fmt.Sprintf("Program: %s", cur.cfg.ReviewProgram)))

	for {
		menuOptions := []string{
			"Create Review",
			"List Reviews",
			"Add Comment",
			"List Comments",
		}
		if cur.cfg.HasIntro {
			menuOptions = append(menuOptions, "Create Student Intro", "List Student Intros")
		}
		menuOptions = append(menuOptions, "Transaction History", "Wallet Management", "Exit")

		menu := &survey.Select{
			Message: promptStyle.Render("Choose an action:"),
			Options: menuOptions,
			Help:    "Use the arrow keys to navigate, and press Enter to select.",
		}

		var choice string
		if err := survey.AskOne(menu, &choice); err != nil {
			if err == terminal.InterruptErr {
				return nil
			}
			return err
		}

		var err error
		switch choice {
		case "Create Review":
			err = handleCreateReview(cmd.Context(), reviewInput{})
		case "List Reviews":
			err = handleListReviews(cmd.Context())
		case "Add Comment":
			err = handleAddComment(cmd.Context(), "", "")
		case "List Comments":
			err = handleListComments(cmd.Context(), "")
		case "Create Student Intro":
			err = handleCreateIntro(cmd.Context(), "", "")
		case "List Student Intros":
			err = handleListIntros(cmd.Context())
		case "Transaction History":
			err = handleHistory(cmd.Context(), "", reviewProgramName, 20)
		case "Wallet Management":
			err = handleWalletManagement(cmd.Context())
		case "Exit":
			fmt.Println("Exiting reviews-cli.")
			return nil
		}
		if err != nil {
			fmt.Println(warningStyle.Render(fmt.Sprintf("❌ %v", err)))
		}
		fmt.Println()
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(warningStyle.Render(err.Error()))
		os.Exit(1)
	}
}
