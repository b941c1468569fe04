// cmd/notifyctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/database"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/store"
)

var (
	configPath   string
	registryPath string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "notifyctl",
	Short: "Operate the laundry notification pipeline",
	Long: `notifyctl manages notification templates and previews behavioral triggers.

Available commands:
  templates validate - Check the template registry for unknown tokens and duplicates
  templates list     - Print the template registry
  templates add      - Add or replace a template in the registry file
  templates seed     - Upsert the registry into notification_templates
  templates activate/deactivate - Toggle a stored template and drop its cached copy
  triggers preview   - Evaluate active triggers without sending anything
  db migrate         - Create missing tables and indexes`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "template registry (default: template.registry_path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	templatesCmd.AddCommand(templatesValidateCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSeedCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesActivateCmd)
	templatesCmd.AddCommand(templatesDeactivateCmd)
	triggersCmd.AddCommand(triggersPreviewCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(triggersCmd)
	rootCmd.AddCommand(dbCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// resolveRegistry prefers --registry, then the configured path.
func resolveRegistry() string {
	if registryPath != "" {
		return registryPath
	}
	if cfg, err := loadConfig(); err == nil {
		return cfg.Template.RegistryPath
	}
	return "configs/templates.json"
}

// openStore connects to PostgreSQL; the returned func closes the connection.
func openStore(cfg *config.Config) (*store.Store, func(), error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return store.New(pg.DB), func() { _ = pg.Close() }, nil
}

func cliLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console", "stderr")
}
