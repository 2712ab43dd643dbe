package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"constructboq/services"
)

func newBOQCmd(app *App) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "boq <takeoff.json>",
		Short: "Print the priced bill of quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(args[0], flags)
			if err != nil {
				return err
			}
			app.printBOQ(cmd.OutOrStdout(), s)
			return nil
		},
	}
	flags.register(cmd, string(services.ModeEstimation))
	return cmd
}

func qty(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (a *App) printBOQ(w io.Writer, s *services.Session) {
	snap := s.Recompute()
	v := snap.Valuation
	currency := snap.Settings.Currency

	title := "BILL OF QUANTITIES"
	if snap.Mode == services.ModePayment {
		title = "INTERIM VALUATION"
	}
	fmt.Fprintln(w, a.render(styleTitle, title+": "+s.Takeoff.ProjectName))
	fmt.Fprintln(w)

	var headers []string
	if snap.Mode == services.ModePayment {
		headers = []string{"REF", "DESCRIPTION", "UNIT", "CONTRACT QTY", "PREV QTY", "THIS QTY", "RATE", "CUMULATIVE"}
	} else {
		headers = []string{"REF", "DESCRIPTION", "UNIT", "QTY", "RATE", "AMOUNT"}
	}
	right := map[int]bool{}
	for i := 3; i < len(headers); i++ {
		right[i] = true
	}

	var rows [][]string
	ref := 0
	for _, c := range snap.Categories {
		rows = append(rows, []string{"", a.render(styleHeader, strings.ToUpper(string(c)))})
		for _, g := range v.GroupsIn(c) {
			row := []string{services.RefLetter(ref), g.Name, g.Unit}
			ref++
			if snap.Mode == services.ModePayment {
				row = append(row, qty(g.TotalQuantity), qty(g.PreviousQuantity), qty(g.ExecutedQuantity),
					services.FormatAmount(g.Rate), services.FormatAmount(g.Amounts.Cumulative))
			} else {
				row = append(row, qty(g.TotalQuantity), services.FormatAmount(g.Rate), services.FormatAmount(g.Amounts.Contract))
			}
			rows = append(rows, row)
		}
	}
	fmt.Fprint(w, a.table(headers, rows, right))
	fmt.Fprintln(w)

	m := v.Markup
	amount := func(x services.Amounts) float64 {
		if snap.Mode == services.ModePayment {
			return x.Cumulative
		}
		return x.Contract
	}
	totals := [][]string{{"SUB TOTAL", services.FormatMoney(amount(v.Totals), currency)}}
	if snap.Mode == services.ModeEstimation {
		totals = append(totals, []string{
			fmt.Sprintf("CONTINGENCY (%s%%)", services.FormatPercent(m.ContingencyPct)),
			services.FormatMoney(amount(m.Contingency), currency),
		})
	}
	totals = append(totals,
		[]string{fmt.Sprintf("VAT (%s%%)", services.FormatPercent(m.VATPct)), services.FormatMoney(amount(m.VAT), currency)},
		[]string{"GRAND TOTAL", a.render(styleTotal, services.FormatMoney(amount(m.GrandTotal), currency))},
	)
	fmt.Fprint(w, a.table([]string{"", currency}, totals, map[int]bool{1: true}))

	flagged := 0
	for _, item := range s.Takeoff.Items {
		if item.LowConfidence() {
			flagged++
		}
	}
	if flagged > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, a.render(styleDim, fmt.Sprintf("%d item(s) measured with low confidence", flagged)))
	}
}
