package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAskCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a natural-language question about your data",
		Example: `  insights ask "what's my total revenue?"
  insights ask "show employees by role as a pie chart"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Ask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			renderResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func renderResponse(w io.Writer, resp *QueryResponse) {
	if resp.TranslatorFailed {
		fmt.Fprintf(w, "note: language model unavailable (%s), used keyword matching\n\n", resp.TranslatorError)
	}
	if resp.Answer != nil {
		fmt.Fprintln(w, *resp.Answer)
	}
	if resp.Table != nil {
		renderTable(w, resp.Table)
	}
	if resp.Chart != nil && resp.Table == nil {
		renderChart(w, resp.Chart)
	}
}

func renderTable(w io.Writer, table *Table) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = formatCell(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func formatCell(cell interface{}) string {
	// JSON numbers decode as float64; keep integers free of trailing zeros.
	if f, ok := cell.(float64); ok {
		return formatValue(f)
	}
	return fmt.Sprint(cell)
}

// renderChart prints one "label  value" line per data point. Multi-series
// charts repeat the labels per series.
func renderChart(w io.Writer, chart *Chart) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, series := range chart.Series {
		for i, v := range series {
			if i >= len(chart.Labels) {
				break
			}
			fmt.Fprintf(tw, "%s\t%s\n", chart.Labels[i], formatValue(v))
		}
	}
	_ = tw.Flush()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
