package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flashrun24/frc-season-map/internal/archive"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show location archive statistics",
	Long:  "Display the latest archived team season and the number of archived team and event locations.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return formatStatus(os.Stdout, archive.NewStore(cfg.Archive.Dir))
	},
}

func init() { rootCmd.AddCommand(statusCmd) }

func formatStatus(w io.Writer, store *archive.Store) error {
	year, ok, err := store.LatestTeamYear()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "Team archive:  none")
	} else {
		teams, err := store.LoadTeams()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Team archive:  %d (%d locations)\n", year, len(teams))
	}

	events, err := store.LoadEvents()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Event archive: %d locations\n", len(events))
	return nil
}
