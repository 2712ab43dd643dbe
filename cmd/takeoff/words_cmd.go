package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"constructboq/services"
)

func newWordsCmd(app *App) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "words <amount>",
		Short: "Spell a currency amount in words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := cast.ToFloat64E(strings.ReplaceAll(args[0], ",", ""))
			if err != nil || !services.IsFinite(amount) {
				return fmt.Errorf("amount %q is not a number", args[0])
			}
			if currency == "" {
				currency = app.Settings.Currency
			}
			words := services.NumberToWords(amount, currency)
			if words == "" {
				return fmt.Errorf("amount %s is too large to spell", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), words)
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default from config)")
	return cmd
}
