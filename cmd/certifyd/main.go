// Command certifyd serves the certificate issuance pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/automaxprocs/maxprocs"

	certify "github.com/apontes/go-certify"
	"github.com/apontes/go-certify/internal/config"
	"github.com/apontes/go-certify/internal/httpapi"
	"github.com/apontes/go-certify/internal/observability"
	"github.com/apontes/go-certify/internal/storage/bunstore"
)

// Version is set at build time via ldflags.
var Version = "dev"

// shutdownTimeout bounds graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}
	if flags.version {
		fmt.Println("certifyd " + Version)
		return nil
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
		cfg.Server.Debug = true
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	timeout, err := cfg.RenderTimeout()
	if err != nil {
		return err
	}

	opts := []certify.Option{
		certify.WithRecordStore(store),
		certify.WithPublisher(publisher),
		certify.WithLaunchProfile(certify.LaunchProfile(cfg.Render.Profile)),
		certify.WithTimeout(timeout),
		certify.WithDateFormat(cfg.Render.DateFormat),
	}
	if cfg.Render.BrowserBin != "" {
		opts = append(opts, certify.WithBrowserBin(cfg.Render.BrowserBin))
	}

	svc := certify.New(opts...)
	defer svc.Close()

	api := httpapi.NewServer(svc, log, httpapi.Config{
		Debug:      cfg.Server.Debug,
		EnableCORS: cfg.Server.EnableCORS,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
		// Write timeout must cover a full render, which can take most of
		// the render timeout plus upload time.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("certifyd listening",
			"addr", cfg.Server.Addr,
			"profile", cfg.Render.Profile,
			"store", cfg.Store.Driver,
			"bucket", cfg.Bucket.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore constructs the configured record store and its cleanup func.
func buildStore(ctx context.Context, cfg *config.Config) (certify.RecordStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		bs, err := bunstore.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() { _ = bs.Close() }, nil
	default: // memory, validated by config
		return certify.NewMemoryStore(), func() {}, nil
	}
}

// buildPublisher constructs the configured publication sink.
func buildPublisher(ctx context.Context, cfg *config.Config) (certify.Publisher, error) {
	switch cfg.Bucket.Driver {
	case config.PublisherFile:
		return certify.NewFilePublisher(cfg.Bucket.Dir)
	default: // s3, validated by config
		var awsOpts []func(*awsconfig.LoadOptions) error
		if cfg.Bucket.Region != "" {
			awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.Bucket.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return certify.NewS3Publisher(client, cfg.Bucket.Name, cfg.Bucket.BaseURL), nil
	}
}
