package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hashnav/internal/config"
	"github.com/vango-dev/hashnav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┬ ┬┌┐┌┌─┐┬  ┬
  ╠═╣├─┤└─┐├─┤│││├─┤└┐┌┘
  ╩ ╩┴ ┴└─┘┴ ┴┘└┘┴ ┴ └┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashnav",
		Short: "Hash-address navigation engine tooling",
		Long: `hashnav drives a hash-address router: it resolves navigations,
runs guards, keeps the address bar in sync and reports every transition.

  • simulate: run scripted navigation scenarios against a simulated browser
  • serve:    drive real browser tabs over a WebSocket
  • routes:   print the configured route table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		simulateCmd(),
		serveCmd(),
		routesCmd(),
		versionCmd(),
	)
	return cmd
}

// loadConfig loads path, or the nearest project config when path is empty,
// and validates it.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printBanner prints the hashnav ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
