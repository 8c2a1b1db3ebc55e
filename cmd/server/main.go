package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "lintang/dronepatrol/docs"
	"lintang/dronepatrol/pkg/config"
	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/engine/planner"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/log"
	"lintang/dronepatrol/pkg/server/rest"
	"lintang/dronepatrol/pkg/server/rest/service"
	"lintang/dronepatrol/pkg/spatial"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	configFile = flag.String("config", "", "yaml config file, defaults are used when empty")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides the config")
	dbPath     = flag.String("db", "", "pebble db directory, overrides the config")
	layoutFile = flag.String("layout", "", "osm/pbf airfield layout, overrides the config")
)

//	@title			dronepatrol API
//	@version		1.0
//	@description	patrol route planner for a bird deterrence drone over airfield hotspots

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	os.Exit(serve())
}

func serve() int {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *layoutFile != "" {
		cfg.LayoutFile = *layoutFile
	}

	return log.Run("server", cfg.Log.Options(), func(logger *slog.Logger) error {
		return run(cfg, logger)
	})
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pebble.Open(cfg.DBPath, &pebble.Options{})
	if err != nil {
		return err
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	graph, err := sessionGraph(ctx, cfg, kvDB, logger)
	if err != nil {
		return err
	}

	patrolSvc := service.NewPatrolService(cfg.Airfield.Name, graph, planner.New(cfg.Planner()), kvDB,
		spatial.NewIndex(graph.Locations()), logger)
	if _, err := patrolSvc.Replan(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(swaggerURL(cfg.ListenAddr)), // the url pointing to API definition
	))

	rest.PatrolRouter(r, patrolSvc, m)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server started", slog.String("addr", cfg.ListenAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// sessionGraph loads the preprocessed layout of the configured airfield, or builds one
// and stores it with its hotspot coverage when the db has none yet.
func sessionGraph(ctx context.Context, cfg config.Config, kvDB *kv.KVDB, logger *slog.Logger) (*datastructure.Graph, error) {
	rec, err := kvDB.GetLayout(cfg.Airfield.Name)
	if err == nil {
		logger.Info("loaded preprocessed layout", slog.String("layout", rec.Name), slog.Int("locations", len(rec.Locations)))
		return rec.Graph()
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, err
	}

	graph, err := cfg.AirfieldLayout().Load(ctx, cfg.LayoutFile, cfg.HotspotCount, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if err := kvDB.SaveLayout(kv.NewLayoutRecord(cfg.Airfield.Name, graph)); err != nil {
		return nil, err
	}
	cells, err := kvDB.SaveCoverage(cfg.Airfield.Name, graph.Locations(), false)
	if err != nil {
		return nil, err
	}
	logger.Info("built layout",
		slog.String("layout", cfg.Airfield.Name),
		slog.Int("locations", graph.Len()),
		slog.Int("hotspots", graph.CountZone(datastructure.ZoneHotspot)),
		slog.Int("coverage_cells", cells))
	return graph, nil
}

func swaggerURL(listenAddr string) string {
	host := listenAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/swagger/doc.json"
}
