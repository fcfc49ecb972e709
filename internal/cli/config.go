package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhle/taskly/internal/credential"
	"github.com/nhle/taskly/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage taskly configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration (file, env and defaults)",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

var configSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the MySQL password in the system keyring",
	Long: `Store the MySQL password in the system keyring under
database.password_key. The password is read from stdin.`,
	RunE: runConfigSetPassword,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetPasswordCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", configPath, data)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	if err := model.SaveConfig(configPath, model.DefaultAppConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

func runConfigSetPassword(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.PasswordKey == "" {
		return fmt.Errorf("database.password_key is empty")
	}

	password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && password == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	vault, err := credential.Open(filepath.Join(filepath.Dir(configPath), "credentials"))
	if err != nil {
		return err
	}
	if err := vault.Set(cfg.Database.PasswordKey, password); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored password under %q\n", cfg.Database.PasswordKey)
	return nil
}
