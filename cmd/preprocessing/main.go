package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"lintang/dronepatrol/pkg/config"
	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/engine/planner"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/log"
	"lintang/dronepatrol/pkg/server/rest/service"
	"lintang/dronepatrol/pkg/spatial"

	"github.com/cockroachdb/pebble"
)

var (
	configFile = flag.String("config", "", "yaml config file, defaults are used when empty")
	dbPath     = flag.String("db", "", "pebble db directory, overrides the config")
	layoutFile = flag.String("f", "", "osm/pbf airfield layout, the demo airfield is generated when empty")
	hotspots   = flag.Int("hotspots", -1, "number of generated hotspots, overrides the config")
	seed       = flag.Uint64("seed", 0, "hotspot placement seed, overrides the config when non zero")
)

func main() {
	os.Exit(preprocess())
}

func preprocess() int {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *layoutFile != "" {
		cfg.LayoutFile = *layoutFile
	}
	if *hotspots >= 0 {
		cfg.HotspotCount = *hotspots
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	return log.Run("preprocessing", cfg.Log.Options(), func(logger *slog.Logger) error {
		if err := run(context.Background(), cfg, logger); err != nil {
			return err
		}
		fmt.Printf("\n layout %s ready!!\n", cfg.Airfield.Name)
		return nil
	})
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := pebble.Open(cfg.DBPath, &pebble.Options{})
	if err != nil {
		return err
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	graph, err := cfg.AirfieldLayout().Load(ctx, cfg.LayoutFile, cfg.HotspotCount, cfg.Seed)
	if err != nil {
		return err
	}

	bar := kv.NewProgressBar(graph.Len(), "[cyan][1/3][reset] saving airfield layout to pebble db...", true)
	rec := kv.NewLayoutRecord(cfg.Airfield.Name, graph)
	if err := kvDB.SaveLayout(rec); err != nil {
		return err
	}
	bar.Add(graph.Len())
	fmt.Println("")

	cells, err := kvDB.SaveCoverage(cfg.Airfield.Name, graph.Locations(), true)
	if err != nil {
		return err
	}
	fmt.Println("")

	bar = kv.NewProgressBar(graph.CountZone(datastructure.ZoneHotspot), "[cyan][3/3][reset] planning the initial patrol route...", true)
	svc := service.NewPatrolService(cfg.Airfield.Name, graph, planner.New(cfg.Planner()), kvDB,
		spatial.NewIndex(graph.Locations()), logger)
	route, err := svc.Replan(ctx)
	if err != nil {
		return err
	}
	bar.Finish()

	logger.Info("layout preprocessed",
		slog.String("layout", cfg.Airfield.Name),
		slog.Int("locations", graph.Len()),
		slog.Int("coverage_cells", cells),
		slog.Uint64("route_id", route.ID),
		slog.String("route_status", route.Status))
	return nil
}
