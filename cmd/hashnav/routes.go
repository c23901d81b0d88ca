package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the configured route table as a tree, with names and redirects.

Examples:
  hashnav routes
  hashnav routes --config=site/hashnav.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			rt, err := cfg.Router()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, cfg.String())
			fmt.Fprintf(out, "\n%d records", len(rt.Routes()))
			if cfg.NotFound != "" {
				fmt.Fprintf(out, ", unmatched paths resolve to %q", cfg.NotFound)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest hashnav.{json,yaml,yml,toml})")

	return cmd
}
