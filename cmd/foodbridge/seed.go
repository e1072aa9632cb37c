package main

import (
	"context"
	"fmt"

	"foodbridge/internal/db"
	"foodbridge/internal/seed"
	"foodbridge/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo profiles and donations",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of fake donations to create",
			Value:   12,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded donations first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		profilesRepo := store.NewProfileRepository(pool)
		foodItemsRepo := store.NewFoodItemRepository(pool)
		tasksRepo := store.NewTaskRepository(pool)
		donations := store.NewDonationStore(pool, foodItemsRepo, tasksRepo)

		logrus.Info("Seeding profiles...")
		if err := seed.SeedFakeProfiles(ctx, profilesRepo); err != nil {
			return fmt.Errorf("failed to seed profiles: %w", err)
		}

		logrus.Info("Seeding donations...")
		if err := seed.SeedFakeDonations(ctx, pool, donations, c.Int("count"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed donations: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
