// Package cli implements the taskly command line: the API server plus a
// few commands that drive the task engine directly.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskly/internal/model"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskly",
		Short: "Taskly - personal and group task tracking",
		Long: `Taskly tracks personal and group tasks with subtasks.

A task is complete once every subtask is checked off. Run "taskly serve"
to start the REST API used by the mobile client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", model.DefaultConfigPath(), "Path to config file")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
