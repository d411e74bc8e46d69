package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/grid-oracle/internal/config"
	"github.com/yourusername/grid-oracle/internal/database"
	"github.com/yourusername/grid-oracle/internal/datasource"
	"github.com/yourusername/grid-oracle/internal/health"
	applogger "github.com/yourusername/grid-oracle/internal/logger"
	"github.com/yourusername/grid-oracle/internal/metrics"
	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/repository"
	"github.com/yourusername/grid-oracle/internal/scheduler"
	"github.com/yourusername/grid-oracle/internal/service"
	"github.com/yourusername/grid-oracle/internal/simulate"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	raceName     string
	circuitName  string
	weatherFlag  string
	modeFlag     string
	simsFlag     int
	lapsFlag     int
	seedFlag     int64
	entriesFile  string
	snapshotOut  string
	logger       *logrus.Logger
	cfg          *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	predictCmd.Flags().StringVar(&raceName, "race", "", "Race name (required)")
	predictCmd.Flags().StringVar(&circuitName, "circuit", "", "Circuit name for track character lookup")
	predictCmd.Flags().StringVar(&weatherFlag, "weather", "Dry", "Race weather: Dry or Wet")
	predictCmd.Flags().StringVar(&modeFlag, "mode", "", "Simulation mode: rank or laps")
	predictCmd.Flags().IntVar(&simsFlag, "sims", 0, "Number of simulations")
	predictCmd.Flags().IntVar(&lapsFlag, "laps", 0, "Race length in laps (laps mode)")
	predictCmd.Flags().Int64Var(&seedFlag, "seed", 0, "RNG seed for reproducible runs")
	predictCmd.Flags().StringVar(&entriesFile, "entries", "", "JSON file with the entry list (required)")
	predictCmd.MarkFlagRequired("race")
	predictCmd.MarkFlagRequired("entries")

	replayCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Write the rating snapshot to this file")
}

var rootCmd = &cobra.Command{
	Use:   "gridoracle",
	Short: "Monte Carlo race outcome forecaster",
	Long:  `Forecast race outcome probabilities from Elo ratings and Monte Carlo simulation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Load AWS secrets if enabled
		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cmd.Context(), cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return err
		}
		logger = applogger.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast one race",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd.Context())
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild ratings from history and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the forecast service with scheduled refreshes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(predictCmd, replayCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// newPredictionService assembles the engine from config, without a database.
func newPredictionService(history []models.HistoricalResult) (*service.PredictionService, error) {
	pool, err := simulate.NewResidualPool(gridResiduals(history))
	if err != nil {
		return nil, err
	}
	rank, err := simulate.NewRankPerturbationSimulator(pool, nil, logger)
	if err != nil {
		return nil, err
	}
	lap, err := simulate.NewLapAccumulationSimulator(simulate.BaselineLapModel, logger)
	if err != nil {
		return nil, err
	}
	return service.NewPredictionService(cfg, rank, lap, nil, logger), nil
}

func fetchHistory(ctx context.Context) ([]models.HistoricalResult, error) {
	source, err := datasource.NewFromConfig(&cfg.History, logger)
	if err != nil {
		return nil, err
	}
	var all []models.HistoricalResult
	for _, year := range cfg.History.Seasons {
		results, err := source.FetchSeason(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch season %d: %w", year, err)
		}
		all = append(all, results...)
	}
	return all, nil
}

// gridResiduals derives the empirical noise pool from history: how far each
// finish landed from the grid slot that predicted it.
func gridResiduals(history []models.HistoricalResult) []float64 {
	residuals := make([]float64, 0, len(history))
	for _, res := range history {
		if res.Grid <= 0 {
			continue
		}
		residuals = append(residuals, float64(res.EffectivePosition()-res.Grid))
	}
	return residuals
}

func runPredict(ctx context.Context) error {
	data, err := os.ReadFile(entriesFile)
	if err != nil {
		return fmt.Errorf("failed to read entries file: %w", err)
	}
	var entries []service.EntryRequest
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse entries file: %w", err)
	}

	history, err := fetchHistory(ctx)
	if err != nil {
		return err
	}

	svc, err := newPredictionService(history)
	if err != nil {
		return err
	}
	if err := svc.RefreshFromHistory(history); err != nil {
		return err
	}

	forecast, err := svc.Predict(ctx, service.PredictionRequest{
		RaceName:    raceName,
		Circuit:     circuitName,
		Weather:     models.Weather(weatherFlag),
		Mode:        modeFlag,
		Simulations: simsFlag,
		Laps:        lapsFlag,
		Seed:        seedFlag,
		Entries:     entries,
	})
	if err != nil {
		return err
	}

	printForecast(forecast)
	return nil
}

func printForecast(forecast *models.Forecast) {
	fmt.Printf("%s  (%s, %s mode, %d simulations, grid: %s)\n\n",
		forecast.RaceName, forecast.Weather, forecast.Mode, forecast.Simulations, forecast.GridSource)
	fmt.Printf("%-12s %6s %8s %7s %8s %7s %8s %8s\n",
		"DRIVER", "WIN%", "PODIUM%", "TOP5%", "POINTS%", "DNF%", "AVG POS", "FAIR")
	for _, row := range forecast.Rows {
		fair := "-"
		if odds, ok := row.FairWinOdds(); ok {
			fair = odds.String()
		}
		fmt.Printf("%-12s %6.1f %8.1f %7.1f %8.1f %7.1f %8.2f %8s\n",
			row.Driver, row.WinPct, row.PodiumPct, row.Top5Pct, row.PointsPct,
			row.DNFPct, row.AvgPosition, fair)
	}
	if forecast.CoercedCells > 0 {
		fmt.Printf("\nwarning: %d model outputs were coerced to DNF\n", forecast.CoercedCells)
	}
}

func runReplay(ctx context.Context) error {
	history, err := fetchHistory(ctx)
	if err != nil {
		return err
	}

	svc, err := newPredictionService(history)
	if err != nil {
		return err
	}
	if err := svc.RefreshFromHistory(history); err != nil {
		return err
	}

	snapshot := svc.Snapshot()
	fmt.Printf("Replayed %d races: %d drivers, %d teams rated\n",
		snapshot.RacesReplayed, len(snapshot.DriverRatings), len(snapshot.TeamRatings))

	if snapshotOut != "" {
		if err := snapshot.WriteFile(snapshotOut); err != nil {
			return err
		}
		fmt.Printf("Snapshot written to %s\n", snapshotOut)
	}
	return nil
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	historyRepo := repository.NewPostgresHistoryRepository(db)
	snapshotRepo := repository.NewPostgresSnapshotRepository(db)
	forecastRepo := repository.NewPostgresForecastRepository(db)

	source, err := datasource.NewFromConfig(&cfg.History, logger)
	if err != nil {
		return err
	}

	stored, err := historyRepo.GetBySeasons(ctx, cfg.History.Seasons)
	if err != nil && err != models.ErrNoHistory {
		return err
	}

	pool, err := simulate.NewResidualPool(gridResiduals(stored))
	if err != nil {
		// No stored history yet; the first scheduled refresh fills it.
		logger.Warn("No residuals available yet, using unit residual pool")
		pool, _ = simulate.NewResidualPool([]float64{-1, 0, 1})
	}
	rank, err := simulate.NewRankPerturbationSimulator(pool, nil, logger)
	if err != nil {
		return err
	}
	lap, err := simulate.NewLapAccumulationSimulator(simulate.BaselineLapModel, logger)
	if err != nil {
		return err
	}

	svc := service.NewPredictionService(cfg, rank, lap, forecastRepo, logger)
	ingestion := service.NewIngestionService(source, historyRepo, snapshotRepo, svc, cfg.History.Seasons, logger)

	if err := ingestion.RestoreLatestSnapshot(ctx); err != nil {
		logger.WithError(err).Info("No rating snapshot to restore, refreshing from source")
		if err := ingestion.RefreshRatings(ctx); err != nil {
			return err
		}
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      logger,
		DB:          db,
		Metrics:     metrics.Handler(),
		MetricsPath: cfg.Metrics.Path,
	})
	if err := healthServer.Start(ctx); err != nil {
		return err
	}
	healthServer.SetReady(true)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(ingestion, logger)
		if err := sched.ScheduleRatingRefresh(cfg.Scheduler.RefreshSchedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"port":    cfg.Metrics.Port,
	}).Info("Grid Oracle serving")

	<-ctx.Done()

	if sched != nil {
		sched.Stop()
	}
	healthServer.SetReady(false)
	return nil
}
