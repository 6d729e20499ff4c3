// cmd/job-portal/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"job-portal/internal/common/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "job-portal",
	Short:        "Job portal API with asynchronous resume screening",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default configs/config.yaml plus the APP_ENVIRONMENT overlay)")

	rootCmd.AddCommand(serveCmd, sweepCmd, schemaCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
