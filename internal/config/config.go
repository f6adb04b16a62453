package config

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Sink   SinkConfig
	HTTP   HTTPConfig
	Import ImportConfig
	Parse  ParseConfig
}

type SinkConfig struct {
	SQLite     SQLiteConfig
	BatchSize  int
	FlushMaxMS int
}

type SQLiteConfig struct {
	Path string
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
	RateRPS     int
	RateBurst   int
	Metrics     bool
	AccessLog   bool
}

type ImportConfig struct {
	Dir string
}

type ParseConfig struct {
	SampleLines int
	Owner       string
}

const (
	defaultSQLitePath  = "memories.db"
	defaultHTTPAddr    = ":8765"
	defaultBatchSize   = 200
	defaultFlushMS     = 0
	defaultRateRPS     = 20
	defaultRateBurst   = 40
	defaultSampleLines = 50
)

func Load() Config {
	cfg := Config{}

	cfg.Sink.SQLite.Path = strings.TrimSpace(os.Getenv("MEMORIES_SQLITE_PATH"))
	if cfg.Sink.SQLite.Path == "" {
		cfg.Sink.SQLite.Path = defaultSQLitePath
	}
	cfg.Sink.BatchSize = readInt("MEMORIES_SINK_BATCH_SIZE", defaultBatchSize)
	cfg.Sink.FlushMaxMS = readInt("MEMORIES_SINK_FLUSH_MAX_MS", defaultFlushMS)

	cfg.HTTP.Addr = strings.TrimSpace(os.Getenv("MEMORIES_HTTP_ADDR"))
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	cfg.HTTP.CORSOrigins = splitList(os.Getenv("MEMORIES_HTTP_CORS_ORIGINS"))
	cfg.HTTP.RateRPS = readInt("MEMORIES_HTTP_RATE_RPS", defaultRateRPS)
	cfg.HTTP.RateBurst = readInt("MEMORIES_HTTP_RATE_BURST", defaultRateBurst)
	cfg.HTTP.Metrics = readBool("MEMORIES_HTTP_METRICS", true)
	cfg.HTTP.AccessLog = readBool("MEMORIES_HTTP_ACCESS_LOG", true)

	cfg.Import.Dir = strings.TrimSpace(os.Getenv("MEMORIES_IMPORT_DIR"))

	cfg.Parse.SampleLines = readInt("MEMORIES_PARSE_SAMPLE_LINES", defaultSampleLines)
	cfg.Parse.Owner = strings.TrimSpace(os.Getenv("MEMORIES_OWNER"))

	return cfg
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\n':
			return true
		}
		return false
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return dedupe(out)
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	sort.Strings(out)
	return out
}

func readInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}

func readBool(name string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func (c Config) FlushInterval() time.Duration {
	if c.Sink.FlushMaxMS <= 0 {
		return 0
	}
	return time.Duration(c.Sink.FlushMaxMS) * time.Millisecond
}

func (c Config) Batch() int {
	if c.Sink.BatchSize <= 0 {
		return defaultBatchSize
	}
	return c.Sink.BatchSize
}

// Snapshot is the loggable view of the configuration.
func (c Config) Snapshot() map[string]any {
	return map[string]any{
		"sink": map[string]any{
			"sqlite_path": c.Sink.SQLite.Path,
			"batch_size":  c.Sink.BatchSize,
			"flush_ms":    c.Sink.FlushMaxMS,
		},
		"http": map[string]any{
			"addr":         c.HTTP.Addr,
			"cors_origins": append([]string(nil), c.HTTP.CORSOrigins...),
			"rate_rps":     c.HTTP.RateRPS,
			"rate_burst":   c.HTTP.RateBurst,
			"metrics":      c.HTTP.Metrics,
			"access_log":   c.HTTP.AccessLog,
		},
		"import": map[string]any{
			"dir": c.Import.Dir,
		},
		"parse": map[string]any{
			"sample_lines": c.Parse.SampleLines,
			"owner":        c.Parse.Owner,
		},
	}
}

func (c Config) SnapshotJSON() []byte {
	data, _ := json.Marshal(map[string]any{"config": c.Snapshot()})
	return data
}
