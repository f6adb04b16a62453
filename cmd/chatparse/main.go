// Command chatparse parses one exported transcript from a file or stdin and
// prints the result as JSON. Useful for inspecting what an import would
// produce without running the daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/analysis"
	"github.com/vishnutej000/Memories-sub001/internal/chatparse"
	"github.com/vishnutej000/Memories-sub001/internal/core"
	"github.com/vishnutej000/Memories-sub001/internal/worker"
)

func main() {
	log.SetFlags(0)

	var (
		file      string
		owner     string
		nowStr    string
		sample    int
		pretty    bool
		withStats bool
	)

	flag.StringVar(&file, "file", "", "Transcript file to parse (default stdin)")
	flag.StringVar(&owner, "owner", "", "Display name for the export's first-person sender")
	flag.StringVar(&nowStr, "now", "", "Reference instant for 2-digit years (RFC 3339)")
	flag.IntVar(&sample, "sample-lines", 50, "Lines sampled for format detection")
	flag.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	flag.BoolVar(&withStats, "stats", false, "Include statistics and sentiment summaries")
	flag.Parse()

	var (
		data []byte
		err  error
	)
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("chatparse: read transcript: %v", err)
	}

	opts := chatparse.Options{SampleLines: sample}
	if nowStr != "" {
		now, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			log.Fatalf("chatparse: parse -now: %v", err)
		}
		opts.Now = now
	}

	parsed, err := worker.Do(context.Background(), string(data), opts, true)
	if err != nil {
		log.Fatalf("chatparse: %v", err)
	}
	if owner != "" {
		renameOwner(&parsed, owner)
	}

	out := map[string]any{
		"messages":     parsed.Messages,
		"participants": parsed.Participants,
	}
	if parsed.Range != nil {
		out["dateRange"] = parsed.Range
	}
	if withStats {
		out["statistics"] = analysis.Calculate(parsed.Messages)
		out["sentiment"] = analysis.Sentiment(parsed.Messages)
		out["keywords"] = analysis.Keywords(parsed.Messages, 0)
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		log.Fatalf("chatparse: encode: %v", err)
	}
}

func renameOwner(parsed *core.ParsedChat, owner string) {
	for i := range parsed.Messages {
		if parsed.Messages[i].Sender == chatparse.OwnerMarker {
			parsed.Messages[i].Sender = owner
		}
	}
	seen := make(map[string]struct{}, len(parsed.Participants))
	out := parsed.Participants[:0]
	for _, p := range parsed.Participants {
		if p == chatparse.OwnerMarker {
			p = owner
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	parsed.Participants = out
}
