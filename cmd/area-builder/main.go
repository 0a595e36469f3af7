package main

import (
	"context"
	"os"
	"time"

	"github.com/dukex/area/pkg/areaapi"
	"github.com/dukex/area/pkg/catalog"
	"github.com/dukex/area/pkg/cmd"
	"github.com/dukex/area/pkg/log"
	"github.com/dukex/area/pkg/otelhelper"
	"github.com/dukex/area/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort       = 9092
	defaultSessionTTL = 24 * time.Hour
)

func main() {
	logger := log.WithModule("area-builder")

	cmd := &cli.Command{
		Name:                  "area-builder",
		Usage:                 "Build AREA automations step by step and save them to the Area API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "session-url",
				Usage:   "Session store URL (file://<dir> or redis://<host>:<port>/<db>)",
				Value:   "file://./data",
				Sources: cli.EnvVars("SESSION_URL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "How long an untouched session is kept",
				Value:   defaultSessionTTL,
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:     "area-api-url",
				Usage:    "Base URL of the Area API",
				Required: true,
				Sources:  cli.EnvVars("AREA_API_URL"),
			},
			&cli.DurationFlag{
				Name:    "area-api-timeout",
				Usage:   "Timeout of Area API requests",
				Value:   10 * time.Second,
				Sources: cli.EnvVars("AREA_API_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Path to a service catalog YAML file replacing the built-in one",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP (configured with the OTEL_EXPORTER_OTLP_* variables)",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing area builder")

			var opts []services.BuilderOption

			if command.Bool("otel-enabled") {
				tracer, shutdown, err := otelhelper.NewTracer(ctx, "area-builder")
				if err != nil {
					return err
				}

				defer func() {
					if err := shutdown(context.Background()); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()

				opts = append(opts, services.WithTracer(tracer))
			}

			serviceCatalog, err := loadCatalog(command.String("catalog"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("session-url"), command.Duration("session-ttl"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			areas, err := areaapi.New(
				command.String("area-api-url"),
				logger,
				areaapi.WithTimeout(command.Duration("area-api-timeout")),
			)
			if err != nil {
				return err
			}

			builder := services.NewBuilder(persistence, serviceCatalog, areas, logger, opts...)

			api := NewAPI(logger, builder)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start area builder", "error", err)
			}

			return err
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, err
	}

	return catalog.Load(data)
}
