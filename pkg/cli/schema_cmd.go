package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSchemaCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the queryable datasets and fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasets, err := client.Schema(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"datasets": datasets})
			}

			names := make([]string, 0, len(datasets))
			for name := range datasets {
				names = append(names, name)
			}
			sort.Strings(names)

			w := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(w, name)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, f := range datasets[name] {
					syn := ""
					if len(f.Synonyms) > 0 {
						syn = strings.Join(f.Synonyms, ", ")
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Key, f.Type, f.Label, syn)
				}
				_ = tw.Flush()
			}
			return nil
		},
	}
}
