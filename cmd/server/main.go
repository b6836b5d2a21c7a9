package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/saviour/internal/assess"
	"github.com/Skufu/saviour/internal/patient"
	"github.com/Skufu/saviour/internal/recommend"
	"github.com/Skufu/saviour/internal/risk"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "saviour",
		Short:        "Trauma mortality risk and treatment suggestion service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	root.AddCommand(serveCmd())
	root.AddCommand(assessCmd(os.Stdout))
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newRecommender returns the configured client, or a stand-in that reports
// the configuration problem on every call.
func newRecommender(cfg recommend.Config, logger zerolog.Logger) (assess.Recommender, error) {
	client, err := recommend.New(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("recommendations disabled; risk estimation still available")
		return recommend.Unavailable{Err: err}, err
	}
	logger.Info().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Dur("timeout", cfg.Timeout).Msg("recommendation client ready")
	return client, nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	logger := newLogger(cfg)
	rec, recErr := newRecommender(cfg.LLM, logger)
	svc := assess.NewService(risk.RandomFunc(rand.Float64), rec, logger)

	router := setupRouter(svc, recommenderStatus{err: recErr}, cfg.StaticRoot, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Leaves room for the outbound completion call.
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("static_root", cfg.StaticRoot).Msg("server listening")
	return waitForShutdown(server, errCh, logger)
}

func waitForShutdown(server *http.Server, errCh <-chan error, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

func assessCmd(out io.Writer) *cobra.Command {
	in := patient.Defaults()
	var (
		race, gender, transport string
		chartPath               string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one patient and request treatment suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Race = patient.Race(race)
			in.Gender = patient.Gender(gender)
			in.Transport = patient.Transport(transport)
			if err := patient.Validate(in); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger().Level(zerolog.WarnLevel)
			rec, _ := newRecommender(cfg.LLM, logger)
			svc := assess.NewService(risk.RandomFunc(rand.Float64), rec, logger)

			return printOutcome(cmd.Context(), out, svc, in, chartPath)
		},
	}

	f := cmd.Flags()
	f.IntVar(&in.Age, "age", in.Age, "patient age (0-150)")
	f.StringVar(&race, "race", string(in.Race), "White, Black, Hispanic, Asian or Other")
	f.StringVar(&gender, "gender", string(in.Gender), "Male, Female or Trans")
	f.StringVar(&transport, "transport", string(in.Transport), "Ambulance, Heliambulance or SelfCar")
	f.IntVar(&in.GCS, "gcs", in.GCS, "Glasgow Coma Scale (3-15)")
	f.IntVar(&in.RespRate, "resp-rate", in.RespRate, "respiratory rate, breaths/min (0-60)")
	f.IntVar(&in.SystolicBP, "systolic-bp", in.SystolicBP, "systolic blood pressure, mmHg (50-250)")
	f.IntVar(&in.HeartRate, "heart-rate", in.HeartRate, "heart rate, bpm (0-200)")
	f.StringVar(&in.Symptoms, "symptoms", "", "presenting symptoms")
	f.StringVar(&in.MedicalHistory, "history", "", "relevant medical history")
	f.StringVar(&chartPath, "chart", "", "write the risk pie chart as HTML to this file")

	return cmd
}

func printOutcome(ctx context.Context, out io.Writer, svc *assess.Service, in patient.Input, chartPath string) error {
	res := svc.Submit(ctx, in)

	fmt.Fprintln(out, res.Display)
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Summary)
	fmt.Fprintln(out)

	if chartPath != "" {
		html, err := risk.RenderPie(res.Risk.MortalityRisk)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(chartPath, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	switch {
	case res.Warning != "":
		fmt.Fprintln(out, res.Warning)
	case res.Error != "":
		fmt.Fprintln(out, res.Error)
		return res.Err
	default:
		fmt.Fprintln(out, res.Recommendation)
	}
	return nil
}
