package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"plangenie/internal/models"
)

func newAskCmd() *cobra.Command {
	var (
		asJSON bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one plan question from the terminal",
		Example: `  plangenie ask "jio prepaid plans under 300 with netflix"
  plangenie ask --json "airtel 84 days"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, tuning, err := loadConfig()
			if err != nil {
				return err
			}

			c, err := wire(ctx, cfg, tuning, logger, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.pipeline.Query(ctx, "cli", models.QueryRequest{Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			out := resp.Reply
			if !plain {
				if rendered, err := glamour.Render(resp.Reply, "auto"); err == nil {
					out = rendered
				}
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the reply without markdown rendering")
	return cmd
}
