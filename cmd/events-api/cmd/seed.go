package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mongodb "github.com/eventhub/events-api/internal/infrastructure/db/mongo"
	"github.com/eventhub/events-api/internal/infrastructure/seed"
)

type seedFunc func(s *seed.Seeder, ctx context.Context, r io.Reader) (seed.Report, error)

func newSeedCommand() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Import users or events from CSV files",
		Long: `Import CSV exports into MongoDB.

  events-api seed users users.csv    comma separated: userName,email,password,rol
  events-api seed events events.csv  semicolon separated: title;category;image;date;location;description;price;creator

Seeding events replaces every existing event. Users whose email already
exists are kept.`,
	}
	seedCmd.AddCommand(newSeedFileCommand("users", "Import users from a CSV file", (*seed.Seeder).Users))
	seedCmd.AddCommand(newSeedFileCommand("events", "Replace events with the rows of a CSV file", (*seed.Seeder).Events))
	return seedCmd
}

func newSeedFileCommand(name, short string, run seedFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), name, args[0], run)
		},
	}
}

func runSeed(ctx context.Context, name, path string, run seedFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	seeder := seed.NewSeeder(mongodb.NewUserRepository(db), mongodb.NewEventRepository(db), log)
	rep, err := run(seeder, ctx, f)
	if err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	log.Info().Str("collection", name).Int("inserted", rep.Inserted).Int("skipped", rep.Skipped).Msg("seed complete")
	return nil
}
