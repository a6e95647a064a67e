package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/course-metadata/internal/application"
	"github.com/eugenenazirov/course-metadata/internal/config"
	"github.com/eugenenazirov/course-metadata/internal/logging"
	"github.com/eugenenazirov/course-metadata/internal/metadata"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("course-metadata", "Course Metadata Service - serves a course's identifier, localized name and description")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	metadataFile := kingpinApp.Flag("metadata", "Path to course metadata document (.yaml, .yml, .json, .hcl); embedded default when empty").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	serveCmd := kingpinApp.Command("serve", "Serve course metadata over HTTP").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	showCmd := kingpinApp.Command("show", "Print course metadata for one locale")
	locale := showCmd.Flag("locale", "Exact locale key to look up").Default("en-US").String()
	decoded := showCmd.Flag("decoded", "Remove one level of HTML escaping from the description").Bool()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *metadataFile != "" {
		overrides.MetadataFile = metadataFile
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	if command == showCmd.FullCommand() {
		if err := show(os.Stdout, cfg.MetadataFile, *locale, *decoded); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// show writes the course id and the name and description for locale to w.
func show(w io.Writer, metadataFile, locale string, decoded bool) error {
	record, err := metadata.LoadOrDefault(metadataFile)
	if err != nil {
		return err
	}

	name, err := record.Name(locale)
	if err != nil {
		return err
	}

	lookup := record.Description
	if decoded {
		lookup = record.DecodedDescription
	}
	description, err := lookup(locale)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "id:          %s\nlocale:      %s\nname:        %s\ndescription: %s\n",
		record.ID(), locale, name, description)
	return err
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
