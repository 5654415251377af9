package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
)

// askString fills *value by prompting when it is empty.
func askString(value *string, message string, required bool) error {
	if *value != "" {
		return nil
	}
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	return survey.AskOne(&survey.Input{Message: message}, value, opts...)
}

// askMultiline is askString for long free text.
func askMultiline(value *string, message string) error {
	if *value != "" {
		return nil
	}
	return survey.AskOne(&survey.Multiline{Message: message}, value, survey.WithValidator(survey.Required))
}

// askPublicKey fills *value with a prompted, validated base58 address.
func askPublicKey(value *string, message string) (solana.PublicKey, error) {
	err := survey.AskOne(&survey.Input{Message: message, Default: *value}, value,
		survey.WithValidator(survey.Required),
		survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			if _, err := solana.PublicKeyFromBase58(s); err != nil {
				return fmt.Errorf("not a valid address: %v", err)
			}
			return nil
		}),
	)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBase58(*value)
}

// parsePublicKey parses value, prompting for it first when empty.
func parsePublicKey(value, message string) (solana.PublicKey, error) {
	if value == "" {
		return askPublicKey(&value, message)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", value, err)
	}
	return key, nil
}

// askRating prompts for a 1 to 5 star rating.
func askRating() (uint8, error) {
	var ratingStr string
	err := survey.AskOne(&survey.Select{
		Message: "Rating:",
		Options: []string{"1", "2", "3", "4", "5"},
		Default: "3",
	}, &ratingStr)
	if err != nil {
		return 0, err
	}
	return parseRating(ratingStr)
}

func parseRating(s string) (uint8, error) {
	r, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid rating %q: %w", s, err)
	}
	if r < 1 || r > 5 {
		return 0, errors.New("rating must be between 1 and 5")
	}
	return uint8(r), nil
}

func confirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: true}, &ok)
	return ok, err
}
