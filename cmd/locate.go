package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flashrun24/frc-season-map/internal/archive"
	"github.com/flashrun24/frc-season-map/internal/geocoder"
	"github.com/flashrun24/frc-season-map/internal/model"
	"github.com/flashrun24/frc-season-map/internal/overrides"
	"github.com/flashrun24/frc-season-map/internal/render"
	"github.com/flashrun24/frc-season-map/pkg/first"
	"github.com/flashrun24/frc-season-map/pkg/geocode"
	"github.com/flashrun24/frc-season-map/pkg/tba"
)

var locateYear int

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve team and event locations for a season",
	Long:  "Fetches the season rosters, resolves coordinates (overrides, archive, live geocoding), deduplicates overlapping markers, updates the archives, and writes GeoJSON.",
	RunE:  runLocate,
}

func init() {
	locateCmd.Flags().IntVar(&locateYear, "year", time.Now().Year(), "season year")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	teamOverrides, eventOverrides, err := overrides.Load(cfg.Overrides.Path)
	if err != nil {
		return err
	}

	provider := geocode.NewClient(cfg.Geocode.GoogleKey,
		geocode.WithRateLimit(cfg.Geocode.RateLimit))

	var enricher geocoder.EventEnricher
	if cfg.First.Username != "" && cfg.First.AuthKey != "" {
		enricher = first.NewClient(cfg.First.Username, cfg.First.AuthKey,
			first.WithBaseURL(cfg.First.BaseURL))
	} else {
		zap.L().Warn("first api credentials not configured, official events without archived locations will not be enriched")
	}

	gc, err := geocoder.New(provider, enricher, archive.NewStore(cfg.Archive.Dir),
		geocoder.WithTeamOverrides(teamOverrides),
		geocoder.WithEventOverrides(eventOverrides))
	if err != nil {
		return err
	}

	seasonData := tba.NewClient(cfg.TBA.AuthKey, tba.WithBaseURL(cfg.TBA.BaseURL))

	var teams []*model.Team
	var events []*model.Event
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var fetchErr error
		teams, fetchErr = seasonData.Teams(gctx, locateYear)
		return fetchErr
	})
	eg.Go(func() error {
		var fetchErr error
		events, fetchErr = seasonData.Events(gctx, locateYear)
		return fetchErr
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := gc.PopulateTeamLocations(ctx, teams, locateYear); err != nil {
		return err
	}
	if err := gc.PopulateEventLocations(ctx, events); err != nil {
		return err
	}

	return render.WriteSeason(cfg.Output.Dir, locateYear, teams, events)
}
