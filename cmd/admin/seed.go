package main

import (
	"fmt"

	"github.com/pavangundu/ai-helper/internal/migrations"
	"github.com/pavangundu/ai-helper/internal/seeds"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the badge catalog, and optionally a demo account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if err := migrations.NewMigrator(db).Run(); err != nil {
			return err
		}
		if err := seeds.SeedBadges(db); err != nil {
			return err
		}

		if demo, _ := cmd.Flags().GetBool("demo"); demo {
			if err := seeds.SeedDemoProfile(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Demo account: %s / %s\n", seeds.DemoEmail, seeds.DemoPassword)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seed complete")
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("demo", false, "Also create the demo account with a two-week roadmap")
}
