package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"laundry-workers/internal/common/database"
	"laundry-workers/internal/models"
	"laundry-workers/internal/store"
	"laundry-workers/pkg/registry"
)

var (
	seedDryRun bool
	addEntry   registry.TemplateEntry
	addChannel string
	addActive  bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage notification templates",
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the template registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveRegistry()
		reg, err := registry.LoadRegistry(path)
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d templates OK\n", path, len(reg.Templates))
		return nil
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the template registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(resolveRegistry())
		if err != nil {
			return err
		}
		return renderRegistry(cmd.OutOrStdout(), reg)
	},
}

var templatesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the template registry into the database",
	RunE:  runTemplatesSeed,
}

var templatesActivateCmd = &cobra.Command{
	Use:     "activate <type> <channel>",
	Short:   "Mark a stored template active",
	Args:    cobra.ExactArgs(2),
	Example: "  notifyctl templates activate picked_up sms",
	RunE:    func(cmd *cobra.Command, args []string) error { return runTemplatesSetActive(cmd, args, true) },
}

var templatesDeactivateCmd = &cobra.Command{
	Use:     "deactivate <type> <channel>",
	Short:   "Mark a stored template inactive so it is no longer sent",
	Args:    cobra.ExactArgs(2),
	Example: "  notifyctl templates deactivate picked_up sms",
	RunE:    func(cmd *cobra.Command, args []string) error { return runTemplatesSetActive(cmd, args, false) },
}

var templatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a template in the registry file",
	Example: `  notifyctl templates add --type picked_up --channel sms --message "Hi {customerName}, we have your laundry!"
  notifyctl templates add --type picked_up --channel email --subject "Order {orderNumber} picked up" --message "<p>{message}</p>"`,
	RunE: runTemplatesAdd,
}

func init() {
	templatesSeedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "validate and print without writing")

	templatesAddCmd.Flags().StringVar(&addEntry.NotificationType, "type", "", "notification type, e.g. an order status or new_order")
	templatesAddCmd.Flags().StringVar(&addChannel, "channel", "", "email or sms")
	templatesAddCmd.Flags().StringVar(&addEntry.Subject, "subject", "", "subject line (email)")
	templatesAddCmd.Flags().StringVar(&addEntry.Message, "message", "", "message body")
	templatesAddCmd.Flags().StringVar(&addEntry.Description, "description", "", "free-form description")
	templatesAddCmd.Flags().BoolVar(&addActive, "active", true, "mark the template active")
	_ = templatesAddCmd.MarkFlagRequired("type")
	_ = templatesAddCmd.MarkFlagRequired("channel")
	_ = templatesAddCmd.MarkFlagRequired("message")
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	path := resolveRegistry()
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		reg = &registry.TemplateRegistry{Version: "1.0.0"}
	}

	entry := addEntry
	entry.Channel = models.Channel(addChannel)
	entry.Active = &addActive
	reg.Put(entry)

	// Validate the whole file so a bad entry is never written.
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := registry.Save(path, reg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s/%s to %s\n", entry.NotificationType, entry.Channel, path)
	return nil
}

// TemplateWriter is the part of the store used for seeding.
type TemplateWriter interface {
	UpsertTemplate(ctx context.Context, t models.NotificationTemplate) error
}

// CacheInvalidator drops cached template lookups after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, notificationType string, channel models.Channel) error
}

func runTemplatesSeed(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(resolveRegistry())
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if seedDryRun {
		return renderRegistry(cmd.OutOrStdout(), reg)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	log := cliLogger()
	var cache CacheInvalidator
	if cfg.Database.Redis.Address != "" {
		if rc, err := database.NewRedis(cfg.Database.Redis); err == nil {
			defer rc.Close()
			cache = store.NewCachedTemplates(db, rc.Client, time.Duration(cfg.Database.Redis.TemplateCacheTTL)*time.Second, log)
		}
	}

	n, err := seedTemplates(cmd.Context(), db, cache, reg, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d templates\n", n)
	return nil
}

// TemplateActivator toggles a stored template.
type TemplateActivator interface {
	SetTemplateActive(ctx context.Context, notificationType string, channel models.Channel, active bool, at time.Time) error
}

func runTemplatesSetActive(cmd *cobra.Command, args []string, active bool) error {
	ch := models.Channel(args[1])
	if !ch.Valid() {
		return fmt.Errorf("channel must be email or sms, got %q", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	var cache CacheInvalidator
	if cfg.Database.Redis.Address != "" {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return fmt.Errorf("template cache: %w", err)
		}
		defer rc.Close()
		cache = store.NewCachedTemplates(db, rc.Client, time.Duration(cfg.Database.Redis.TemplateCacheTTL)*time.Second, cliLogger())
	}

	if err := setTemplateActive(cmd.Context(), db, cache, args[0], ch, active, time.Now().UTC()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s active=%t\n", args[0], ch, active)
	return nil
}

// setTemplateActive writes the flag and then drops the cached lookup, so a deactivated template
// stops sending immediately rather than when its cache entry expires.
func setTemplateActive(ctx context.Context, w TemplateActivator, cache CacheInvalidator, notificationType string, ch models.Channel, active bool, at time.Time) error {
	if err := w.SetTemplateActive(ctx, notificationType, ch, active, at); err != nil {
		return err
	}
	if cache == nil {
		return nil
	}
	if err := cache.Invalidate(ctx, notificationType, ch); err != nil {
		return fmt.Errorf("%s/%s updated but cache not invalidated: %w", notificationType, ch, err)
	}
	return nil
}

// seedTemplates writes every registry entry and invalidates its cache key. It stops at the
// first write error.
func seedTemplates(ctx context.Context, w TemplateWriter, cache CacheInvalidator, reg *registry.TemplateRegistry, at time.Time) (int, error) {
	n := 0
	for _, row := range reg.Rows(at) {
		if err := w.UpsertTemplate(ctx, row); err != nil {
			return n, fmt.Errorf("%s/%s: %w", row.NotificationType, row.Channel, err)
		}
		n++
		if cache != nil {
			_ = cache.Invalidate(ctx, row.NotificationType, row.Channel)
		}
	}
	return n, nil
}

func renderRegistry(w io.Writer, reg *registry.TemplateRegistry) error {
	rows := make([][]string, 0, len(reg.Templates))
	for _, e := range reg.Templates {
		rows = append(rows, []string{
			e.NotificationType,
			string(e.Channel),
			fmt.Sprint(e.IsActive()),
			truncate(e.Subject, 40),
			truncate(e.Message, 60),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("Type", "Channel", "Active", "Subject", "Message")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
