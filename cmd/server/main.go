package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/gymadmin/internal/app"
	"github.com/charlesng35/gymadmin/pkg/logger"
)

const (
	defaultShutdownTimeout = 15 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

type options struct {
	configPath   string
	checkOnly    bool
	portOverride int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "gymadmin: %v\n", err)
		os.Exit(1)
	}
}

func parseOptions(args []string, out io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("gymadmin-server", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.configPath, "config", "", "configuration file or directory containing config.yaml")
	fs.BoolVar(&opts.checkOnly, "check", false, "validate the configuration and menu file, then exit")
	fs.IntVar(&opts.portOverride, "port", 0, "listen port, overrides server.port")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseOptions(args, out)
	if err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.portOverride > 0 {
		cfg.Server.Port = opts.portOverride
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return fmt.Errorf("apply runtime defaults: %w", err)
	}

	if opts.checkOnly {
		if err := checkConfiguration(cfg); err != nil {
			return err
		}
		fmt.Fprintln(out, "configuration ok")
		return nil
	}

	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	log := logger.WithModule("bootstrap")
	for _, key := range generated.Keys() {
		log.Info("generated runtime secret", zap.String("key", key))
	}

	stack, err := bootstrapRuntime(ctx, cfg, generated, log)
	if err != nil {
		return err
	}
	defer stack.Shutdown(context.Background(), log)

	return serve(ctx, &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           stack.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}, shutdownTimeout(cfg.Server), log)
}

// serve runs srv until ctx is cancelled or the listener fails, then drains
// in-flight requests for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, log *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func shutdownTimeout(cfg app.ServerConfig) time.Duration {
	if cfg.Shutdown > 0 {
		return cfg.Shutdown
	}
	return defaultShutdownTimeout
}

// loadApplicationConfig accepts a config file, a directory holding
// config.yaml, or nothing for ./config plus environment overrides.
func loadApplicationConfig(path string) (*app.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config path %q does not exist", path)
	case err != nil:
		return nil, fmt.Errorf("stat config path: %w", err)
	case info.IsDir():
		return app.LoadConfig(path)
	default:
		return app.LoadConfigFile(path)
	}
}
