package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res analysis.Result) {
	fmt.Fprintf(w, "Risk: %s\n", res.RiskLevel)
	fmt.Fprintf(w, "%s\n", res.Summary)
	if len(res.Details) > 0 {
		fmt.Fprintln(w)
		for _, d := range res.Details {
			fmt.Fprintf(w, "  - %s\n", d)
		}
	}
	fmt.Fprintf(w, "\nRecommendation: %s\n", res.Recommendation)
}

func printItems(w io.Writer, items []history.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no history yet")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s  %-6s  %-4s  %s  (%s)\n", it.Timestamp, it.Result.RiskLevel, it.Type, it.Input, it.ID)
	}
}

func printItem(w io.Writer, it history.Item) {
	fmt.Fprintf(w, "ID:    %s\nTime:  %s\nType:  %s\nInput: %s\n\n", it.ID, it.Timestamp, it.Type, it.Input)
	printResult(w, it.Result)
}

func printStats(w io.Writer, s history.Stats) {
	fmt.Fprintf(w, "Total:  %d\nLow:    %d\nMedium: %d\nHigh:   %d\n", s.Total, s.Low, s.Medium, s.High)
}
