// Command listing-submit walks a listing draft through the staged submission
// pipeline and saves it through the listing-service HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"listing-service/internal"
	apiclient_adapter "listing-service/internal/adapters/apiclient"
	"listing-service/internal/configs"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/submission"

	"github.com/google/uuid"
)

// noTimer keeps coordinate lookups explicit; the CLI has no typing to debounce.
type noTimer struct{}

func (noTimer) Stop() bool { return false }

func main() {
	apiURL := flag.String("api", configs.GetEnvAsString("LISTING_API_URL", "http://localhost:8080/api/v1"), "listing-service API base URL")
	token := flag.String("token", configs.GetEnvAsString("LISTING_API_TOKEN", ""), "bearer token")
	kind := flag.String("kind", string(domain.KindProperty), "listing kind: property or project")
	draftPath := flag.String("draft", "", "path to the draft JSON file")
	editID := flag.String("edit", "", "id of an existing listing to replace")
	media := flag.String("media", "", "comma-separated image files to attach")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	logLevel := flag.String("log-level", configs.GetEnvAsString("STDOUT_LOG_LEVEL", "info"), "log level")
	flag.Parse()

	logger, _, err := internal.NewLogger("listing-submit", *logLevel, configs.FluentBitConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if *draftPath == "" {
		fmt.Fprintln(os.Stderr, "-draft is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	saved, err := run(ctx, logger, options{
		apiURL:    strings.TrimRight(*apiURL, "/"),
		cred:      port.Credential(*token),
		kind:      domain.Kind(*kind),
		draftPath: *draftPath,
		editID:    *editID,
		media:     splitList(*media),
	})
	if err != nil {
		var stepErr *submission.StepValidationError
		var valErr *domain.ValidationError
		switch {
		case errors.As(err, &stepErr):
			logger.Error("Draft is incomplete", err, port.Fields{"step": stepErr.Step, "fields": stepErr.Fields})
		case errors.As(err, &valErr):
			logger.Error("Listing was rejected", err, port.Fields{"fields": valErr.Fields})
		default:
			logger.Error("Submission failed", err, nil)
		}
		os.Exit(1)
	}

	fmt.Println(saved.ID.String())
}

type options struct {
	apiURL    string
	cred      port.Credential
	kind      domain.Kind
	draftPath string
	editID    string
	media     []string
}

func run(ctx context.Context, logger port.LoggerPort, opts options) (*domain.Listing, error) {
	clientCfg := apiclient_adapter.Config{BaseURL: opts.apiURL, Timeout: 30 * time.Second, RetryMax: 2}
	assets, err := apiclient_adapter.NewAssetsClient(clientCfg)
	if err != nil {
		return nil, err
	}
	geocoder, err := apiclient_adapter.NewGeocodeClient(clientCfg)
	if err != nil {
		return nil, err
	}
	listings, err := apiclient_adapter.NewListingClient(clientCfg)
	if err != nil {
		return nil, err
	}

	pipeline, err := submission.NewPipeline(submission.Config{
		Kind:         opts.kind,
		Uploader:     assets,
		Geocoder:     geocoder,
		Writer:       listings,
		Logger:       logger.WithFields(port.Fields{"component": "submission_pipeline"}),
		TimerFactory: func(time.Duration, func()) submission.Timer { return noTimer{} },
	})
	if err != nil {
		return nil, err
	}

	if opts.editID != "" {
		id, err := uuid.Parse(opts.editID)
		if err != nil {
			return nil, fmt.Errorf("invalid -edit id: %w", err)
		}
		existing, err := listings.Get(ctx, opts.cred, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
		}
		if err := pipeline.LoadForEdit(existing); err != nil {
			return nil, err
		}
	}

	df, err := readDraftFile(opts.draftPath)
	if err != nil {
		return nil, err
	}
	df.Media = append(df.Media, opts.media...)
	if err := df.apply(pipeline, filepath.Dir(opts.draftPath)); err != nil {
		return nil, err
	}

	if err := pipeline.FetchCoordinates(ctx); err != nil {
		logger.Warn("Coordinates unavailable", port.Fields{"error": err.Error()})
	}

	for pipeline.CurrentStep() < pipeline.StepCount() {
		step, _ := pipeline.Step(pipeline.CurrentStep())
		if _, err := pipeline.Advance(); err != nil {
			return nil, err
		}
		logger.Debug("Step complete", port.Fields{"step": step.Name})
	}

	return pipeline.Submit(ctx, opts.cred)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
