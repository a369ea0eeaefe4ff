package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePrediction(w io.Writer, p types.Prediction) error {
	_, err := fmt.Fprintln(w, p.FormattedPrice)
	return err
}

func writeRanking(w io.Writer, ranking []types.RankedImportance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tATTRIBUTE\tLABEL\tCOEFFICIENT")
	for _, r := range ranking {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Rank, r.Name, r.Label, strconv.FormatFloat(r.Coefficient, 'f', -1, 64))
	}
	return tw.Flush()
}

func writeValuation(w io.Writer, v types.Valuation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSTATUS\tPRICE")
	for _, it := range v.Items {
		result := it.FormattedPrice
		if it.Error != "" {
			result = it.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", it.Index+1, it.Status, result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d priced, %d failed, total %s\n", v.Completed, v.Failed, pricing.FormatCurrency(total(v)))
	return err
}

func total(v types.Valuation) float64 {
	var sum float64
	for _, it := range v.Items {
		sum += it.Price
	}
	return sum
}
