package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andy/billcalc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		out := cmd.OutOrStdout()

		if _, err := os.Stat(path); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force && !confirmPrompt(cmd.InOrStdin(), out, fmt.Sprintf("%s already exists. Overwrite?", path)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		cfg := config.DefaultConfig()
		if workbook, _ := cmd.Flags().GetString("workbook"); workbook != "" {
			cfg.Data.WorkbookPath = workbook
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}

		fmt.Fprintf(out, "✓ Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", configPath(), data)
		return nil
	},
}

func configPath() string {
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func confirmPrompt(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s [y/N] ", message)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file without asking")
	configInitCmd.Flags().String("workbook", "", "Workbook path to record in the new file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
