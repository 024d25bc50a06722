// Command ammd is a demonstration CLI harness over the in-process AMM
// core: it never dials a wire/RPC surface (out of scope per spec §1),
// it just loads the engine's YAML configuration and mounts the
// command groups in cmd/cli against a single in-memory Router.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cmdconfig "ammengine/cmd/config"
	"ammengine/cmd/cli"
	"ammengine/pkg/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; ignored if absent

	env := utils.EnvOrDefault("AMM_ENV", "")
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "ammd: failed to load configuration: %v\n", r)
			os.Exit(1)
		}
	}()
	cmdconfig.LoadConfig(env)

	rootCmd := &cobra.Command{Use: "ammd", Short: "Constant-product / stable-swap AMM engine CLI"}
	rootCmd.AddCommand(cli.AMMCmd)
	rootCmd.AddCommand(cli.PositionsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
