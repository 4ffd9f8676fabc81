package main

import (
	"fmt"
	"time"

	"github.com/pavangundu/ai-helper/internal/store"
	"github.com/spf13/cobra"
)

// streakResetCmd backdates the last streak increment so the next full day counts
// again. Handy for testing streaks without waiting a day.
var streakResetCmd = &cobra.Command{
	Use:   "streak-reset",
	Short: "Move last streak increments to yesterday",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")

		n, err := store.NewProfileStore(db).ResetStreakDates(cmd.Context(), email, time.Now().AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d profile(s)\n", n)
		return nil
	},
}

func init() {
	streakResetCmd.Flags().String("email", "", "Only this profile (default: all profiles)")
}
