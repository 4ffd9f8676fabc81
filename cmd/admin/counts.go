package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/spf13/cobra"
)

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Print row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}

		tables := []struct {
			name  string
			model interface{}
		}{
			{"profiles", &models.Profile{}},
			{"badges", &models.Badge{}},
			{"profile_badges", &models.ProfileBadge{}},
			{"roadmaps", &models.Roadmap{}},
			{"roadmap_days", &models.RoadmapDay{}},
			{"user_activities", &models.UserActivity{}},
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, t := range tables {
			var n int64
			if err := db.Model(t.model).Count(&n).Error; err != nil {
				return fmt.Errorf("count %s: %w", t.name, err)
			}
			fmt.Fprintf(w, "%s\t%d\n", t.name, n)
		}
		return w.Flush()
	},
}
