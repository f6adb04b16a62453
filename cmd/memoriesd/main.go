package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/chatparse"
	"github.com/vishnutej000/Memories-sub001/internal/config"
	httpadmin "github.com/vishnutej000/Memories-sub001/internal/http"
	"github.com/vishnutej000/Memories-sub001/internal/httpapi"
	"github.com/vishnutej000/Memories-sub001/internal/importer"
	"github.com/vishnutej000/Memories-sub001/internal/sink"
	"github.com/vishnutej000/Memories-sub001/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		versionFlag     bool
		dbPath          string
		importDir       string
		owner           string
		sampleLines     int
		httpAddr        string
		httpCorsOrigins string
		httpRateRPS     int
		httpRateBurst   int
		httpMetrics     bool
		httpAccessLog   bool
	)

	flag.BoolVar(&versionFlag, "version", false, "Print build version and exit")
	flag.StringVar(&dbPath, "sqlite", "memories.db", "Path to SQLite database file")
	flag.StringVar(&importDir, "import-dir", "", "Directory watched for dropped .txt transcripts")
	flag.StringVar(&owner, "owner", "", "Display name for the export's first-person sender")
	flag.IntVar(&sampleLines, "sample-lines", 50, "Lines sampled for transcript format detection")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP API address (e.g., :8765)")
	flag.StringVar(&httpCorsOrigins, "http-cors-origins", "", "Comma-separated list of allowed CORS origins")
	flag.IntVar(&httpRateRPS, "http-rate-rps", 20, "Maximum HTTP requests per second per client")
	flag.IntVar(&httpRateBurst, "http-rate-burst", 40, "Burst size for HTTP rate limiter")
	flag.BoolVar(&httpMetrics, "http-metrics", true, "Expose Prometheus metrics endpoint")
	flag.BoolVar(&httpAccessLog, "http-access-log", true, "Log HTTP access records")
	flag.Parse()

	if versionFlag {
		fmt.Printf(
			"memoriesd version: %s (commit %s, built %s)\n",
			version.Version,
			version.Commit,
			version.BuildTime,
		)
		os.Exit(0)
	}

	overrides := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		overrides[f.Name] = true
	})

	cfg := config.Load()

	if overrides["sqlite"] {
		cfg.Sink.SQLite.Path = strings.TrimSpace(dbPath)
	}
	if overrides["import-dir"] {
		cfg.Import.Dir = strings.TrimSpace(importDir)
	}
	if overrides["owner"] {
		cfg.Parse.Owner = strings.TrimSpace(owner)
	}
	if overrides["sample-lines"] && sampleLines > 0 {
		cfg.Parse.SampleLines = sampleLines
	}
	if overrides["http-addr"] {
		cfg.HTTP.Addr = strings.TrimSpace(httpAddr)
	}
	if overrides["http-cors-origins"] {
		cfg.HTTP.CORSOrigins = nil
		for _, origin := range strings.Split(httpCorsOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.HTTP.CORSOrigins = append(cfg.HTTP.CORSOrigins, origin)
			}
		}
	}
	if overrides["http-rate-rps"] {
		cfg.HTTP.RateRPS = httpRateRPS
	}
	if overrides["http-rate-burst"] {
		cfg.HTTP.RateBurst = httpRateBurst
	}
	if overrides["http-metrics"] {
		cfg.HTTP.Metrics = httpMetrics
	}
	if overrides["http-access-log"] {
		cfg.HTTP.AccessLog = httpAccessLog
	}

	log.Printf("%s", cfg.SnapshotJSON())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("memoriesd: received %s, shutting down", sig)
		cancel()
	}()

	db, err := sink.OpenSQLite(cfg.Sink.SQLite.Path)
	if err != nil {
		log.Fatalf("memoriesd: open sqlite: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("memoriesd: closing sink: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatalf("memoriesd: ping sqlite: %v", err)
	}
	if err := migrateSQLite(ctx, db.RawDB()); err != nil {
		log.Fatalf("memoriesd: sqlite migrate: %v", err)
	}
	sink.ApplySQLitePragmas(ctx, db.RawDB())

	build := httpapi.BuildInfo{Version: version.Version, Revision: version.Commit}
	if version.BuildTime != "" && version.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, version.BuildTime); err == nil {
			build.BuiltAt = t
		}
	}

	parseOpts := chatparse.Options{SampleLines: cfg.Parse.SampleLines}

	// The API broadcasts stored messages to stream clients, so the importer
	// writes through the broadcast wrapper and a batching buffer on top.
	var api *httpapi.Server
	var writer sink.Writer = db

	ing := importer.New(db, nil, parseOpts, cfg.Import.Dir, cfg.Parse.Owner)

	if cfg.HTTP.Addr != "" {
		api = httpapi.New(db, ing, httpapi.Options{
			Addr:            cfg.HTTP.Addr,
			CORSOrigins:     cfg.HTTP.CORSOrigins,
			RateLimitRPS:    cfg.HTTP.RateRPS,
			RateLimitBurst:  cfg.HTTP.RateBurst,
			EnableMetrics:   cfg.HTTP.Metrics,
			EnableAccessLog: cfg.HTTP.AccessLog,
			Build:           build,
			ConfigSnapshot:  cfg.Snapshot(),
		})
		writer = sink.WithAPI(db, api)
	}

	buffered := sink.NewBufferedWriter(writer, sink.BufferedOptions{
		BatchSize:     cfg.Batch(),
		FlushInterval: cfg.FlushInterval(),
	})
	defer func() {
		if err := buffered.Close(); err != nil {
			log.Printf("memoriesd: flush buffered sink: %v", err)
		}
	}()
	ing.SetWriter(buffered)

	if cfg.Import.Dir != "" {
		if n, err := ing.Rescan(ctx); err != nil {
			log.Printf("memoriesd: initial import scan: %v", err)
		} else if n > 0 {
			log.Printf("memoriesd: imported %d transcripts from %s", n, cfg.Import.Dir)
		}
		if err := ing.Watch(ctx); err != nil {
			slog.Error("memoriesd: watch import dir", "err", err)
		} else {
			log.Printf("memoriesd: watching %s for transcripts", cfg.Import.Dir)
		}
	}

	if api != nil {
		admin := httpadmin.New(ing)
		admin.Register(api.Mux())
		go func() {
			if err := api.Start(); err != nil {
				log.Fatalf("memoriesd: http api: %v", err)
			}
		}()
		log.Printf("memoriesd: http api ready on %s", cfg.HTTP.Addr)
	}

	<-ctx.Done()

	if api != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Printf("memoriesd: http api shutdown: %v", err)
		}
		cancelShutdown()
	}

	// allow import goroutines to finish cleanly
	time.Sleep(100 * time.Millisecond)
	log.Printf("memoriesd: shutdown complete")
}
