package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"constructboq/services"
)

func newCertificateCmd(app *App) *cobra.Command {
	var flags sessionFlags
	var retention, advance, previous float64

	cmd := &cobra.Command{
		Use:   "certificate <takeoff.json>",
		Short: "Print the interim payment certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for name, v := range map[string]float64{"retention": retention, "advance": advance, "previous": previous} {
				if !services.IsFinite(v) {
					return fmt.Errorf("--%s must be a finite number", name)
				}
			}
			flags.mode = string(services.ModePayment)
			s, err := app.loadSession(args[0], flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("retention") {
				s.Settings.RetentionPct = retention
			}
			if cmd.Flags().Changed("advance") {
				s.Settings.AdvanceRecovery = advance
			}
			if cmd.Flags().Changed("previous") {
				s.Settings.PreviousPayments = previous
			}
			app.printCertificate(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&flags.rates, "rate", nil, `Manual unit rate as "Bill name=rate" (repeatable)`)
	cmd.Flags().Float64Var(&retention, "retention", 0, "Retention percentage")
	cmd.Flags().Float64Var(&advance, "advance", 0, "Advance recovery amount")
	cmd.Flags().Float64Var(&previous, "previous", 0, "Payments certified to date")
	return cmd
}

func (a *App) printCertificate(w io.Writer, s *services.Session) {
	c := s.Recompute().Certificate

	title := "INTERIM PAYMENT CERTIFICATE"
	if s.Meta.IsFinalAccount {
		title = "FINAL PAYMENT CERTIFICATE"
	}
	fmt.Fprintln(w, a.render(styleTitle, title+": "+s.Takeoff.ProjectName))
	fmt.Fprintln(w)

	var rows [][]string
	for _, l := range c.Lines() {
		amount := l.Display()
		if l.Emphasis {
			amount = a.render(styleTotal, amount)
		}
		rows = append(rows, []string{l.Label, amount})
	}
	fmt.Fprint(w, a.table([]string{"DESCRIPTION", "AMOUNT (" + c.Currency + ")"}, rows, map[int]bool{1: true}))
	fmt.Fprintln(w)

	st := styleGood
	if c.AmountDue < 0 {
		st = styleBad
	}
	fmt.Fprintln(w, a.render(st, c.Statement()))
}
