package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"plangenie/internal/models"
)

func newCatalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch the plan catalog and summarize it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, src := newCatalogStore(cfg, logger)
			snap, err := store.EnsureFresh(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(models.PlansResponse{Total: len(snap.Plans), Plans: snap.Plans})
			}

			fmt.Printf("source:  %s\nfetched: %s\nplans:   %d\n\n", src.Name(), snap.FetchedAt.Format("2006-01-02 15:04:05"), len(snap.Plans))
			return printSummary(snap.Plans)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print every normalized plan as JSON")
	return cmd
}

type summaryKey struct{ operator, typ string }

func printSummary(plans []models.Plan) error {
	type row struct {
		count, priced int
		min, max      decimal.Decimal
	}
	rows := map[summaryKey]*row{}
	for _, p := range plans {
		k := summaryKey{p.Operator, p.Type}
		r, ok := rows[k]
		if !ok {
			r = &row{}
			rows[k] = r
		}
		r.count++
		if !p.PriceKnown {
			continue
		}
		if r.priced == 0 || p.Price.LessThan(r.min) {
			r.min = p.Price
		}
		if r.priced == 0 || p.Price.GreaterThan(r.max) {
			r.max = p.Price
		}
		r.priced++
	}

	keys := make([]summaryKey, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].operator != keys[j].operator {
			return keys[i].operator < keys[j].operator
		}
		return keys[i].typ < keys[j].typ
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATOR\tTYPE\tPLANS\tPRICED\tMIN ₹\tMAX ₹")
	for _, k := range keys {
		r := rows[k]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", k.operator, k.typ, r.count, r.priced, r.min.String(), r.max.String())
	}
	return w.Flush()
}
