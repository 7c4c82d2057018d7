package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"statcast/internal/config"
	"statcast/internal/metrics"
	"statcast/internal/metrics/datadog"
	"statcast/internal/metrics/prompush"
	"statcast/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "statcast/internal/storage/all"
)

// Exit codes by failure class, so schedulers can tell a bad snapshot from a
// dead database.
const (
	exitOK         = 0
	exitFailure    = 1
	exitSource     = 2
	exitSchema     = 3
	exitValidation = 4
	exitStore      = 5
)

// main is the entry point for the load binary. It loads the pipeline config,
// optionally initializes a metrics backend, runs the pipeline, and always
// prints the run report as JSON to stdout.
func main() {
	var (
		cfgPath           string
		snapshotPath      string
		metricsBackendFlg string
		pushGatewayURLFlg string
		strict            bool
		validateOnly      bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/statcast.json", "pipeline config JSON path")
	flag.StringVar(&snapshotPath, "snapshot", "", "exact snapshot path (overrides source.file in config)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none); overrides config")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&strict, "strict", false, "promote string-length findings to load-blocking violations")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if snapshotPath != "" {
		p.Source.Kind = "file"
		p.Source.File.Path = snapshotPath
		p.Source.File.Dir = ""
	}
	if strict {
		p.Validate.Strict = true
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(exitFailure)
	}
	if validateOnly {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(exitOK)
	}

	setupMetrics(p, metricsBackendFlg, pushGatewayURLFlg, *verbose)

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: source=%s parser=%s storage=%s table=%s",
			p.Source.Kind, p.Parser.Kind, p.Storage.Kind, p.Storage.DB.Table)
	}

	rep, runErr := pipeline.Run(ctx, p)
	// The report goes to stdout whether the run succeeded or not.
	if err := rep.WriteJSON(os.Stdout); err != nil {
		log.Printf("write report: %v", err)
	}

	// os.Exit skips deferred calls, so flush before either exit path.
	flushMetrics()

	if runErr != nil {
		log.Printf("load failed: %v", runErr)
		os.Exit(exitCode(runErr))
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func flushMetrics() {
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
}

// setupMetrics installs the requested metrics backend: flag → config → env.
func setupMetrics(p config.Pipeline, backendFlag, gwFlag string, verbose bool) {
	backendName := backendFlag
	if backendName == "" {
		backendName = p.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	jobName := p.Job
	if jobName == "" {
		jobName = "statcast_load"
	}

	switch backendName {
	case "pushgateway":
		gwURL := gwFlag
		if gwURL == "" {
			gwURL = p.Metrics.URL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.URL,
			Namespace: "statcast.",
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", p.Metrics.URL, backendName, jobName)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// exitCode maps the pipeline error taxonomy onto process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrSourceUnavailable):
		return exitSource
	case errors.Is(err, pipeline.ErrSchemaViolation):
		return exitSchema
	case errors.Is(err, pipeline.ErrValidationFailed):
		return exitValidation
	case errors.Is(err, pipeline.ErrStoreUnavailable):
		return exitStore
	default:
		return exitFailure
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(exitFailure)
}
