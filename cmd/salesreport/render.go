package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

// render prints the report as aligned text tables.
func render(out io.Writer, state *domain.ReportState) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Status:\t%s\n", state.Status)
	fmt.Fprintf(w, "Period:\t%d %s (%d days)\n", state.Period.Value, state.Period.Unit, state.Period.Days())
	if state.Filters.StartDate != nil || state.Filters.EndDate != nil {
		fmt.Fprintf(w, "Sales between:\t%s\t%s\n", orDash(utils.FormatDate(state.Filters.StartDate)), orDash(utils.FormatDate(state.Filters.EndDate)))
	}

	if state.Error != nil {
		fmt.Fprintf(w, "Error:\t%s\n", state.Error.Message)
		return w.Flush()
	}
	if state.Warning != nil {
		fmt.Fprintf(w, "Warning:\t%s\n", state.Warning.Message)
	}
	if state.Info != "" {
		fmt.Fprintf(w, "Info:\t%s\n", state.Info)
	}

	if state.Aggregation != nil {
		fmt.Fprintf(w, "Total sales:\t%s\n", state.Aggregation.TotalSales.StringFixed(2))

		fmt.Fprintln(w)
		fmt.Fprintln(w, "CLIENT\tTOTAL")
		clients := make([]string, 0, len(state.Aggregation.SalesByClient))
		for client := range state.Aggregation.SalesByClient {
			clients = append(clients, client)
		}
		sort.Strings(clients)
		for _, client := range clients {
			fmt.Fprintf(w, "%s\t%s\n", client, state.Aggregation.SalesByClient[client].StringFixed(2))
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "USER\tTOTAL")
		for _, user := range state.Aggregation.SalesByUser {
			fmt.Fprintf(w, "%s\t%s\n", user.User, user.Total.StringFixed(2))
		}
	}

	if len(state.Predictions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DATE\tPREDICTED\tLOWER\tUPPER")
		for _, point := range state.Predictions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				point.Date.Format("2006-01-02"),
				point.PredictedAmount.StringFixed(2),
				nullable(point.LowerBound),
				nullable(point.UpperBound),
			)
		}
	}

	return w.Flush()
}

func nullable(value decimal.NullDecimal) string {
	if !value.Valid {
		return "-"
	}
	return value.Decimal.StringFixed(2)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
