// Replay summarizes recorded sessions: frame counts, tick ranges and the
// actions sent, per log file.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"os"
	"sort"

	logrec "voxelpilot.ai/internal/persistence/log"
	"voxelpilot.ai/internal/protocol"
)

func main() {
	var (
		dir     = flag.String("dir", "sessions", "session log directory")
		prefix  = flag.String("prefix", "builder", "log file prefix")
		verbose = flag.Bool("v", false, "print every sent action")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[replay] ", 0)

	files, err := logrec.ListFiles(*dir, *prefix)
	if err != nil {
		logger.Fatalf("list %s: %v", *dir, err)
	}
	if len(files) == 0 {
		logger.Fatalf("no %s-*.jsonl.zst files under %s", *prefix, *dir)
	}

	for _, path := range files {
		entries, err := logrec.ReadFile(path)
		if err != nil {
			logger.Fatalf("read %s: %v", path, err)
		}
		summarize(logger, path, entries, *verbose)
	}
}

func summarize(logger *log.Logger, path string, entries []logrec.Entry, verbose bool) {
	var (
		frames, actions    int
		firstTick, lastTick uint64
		haveTick           bool
	)
	byType := map[string]int{}

	for _, e := range entries {
		base, err := protocol.DecodeBase(e.Msg)
		if err != nil {
			continue
		}
		switch e.Dir {
		case logrec.DirRecv:
			if base.Type != protocol.TypeState {
				continue
			}
			frames++
			if !haveTick || e.Tick < firstTick {
				firstTick = e.Tick
			}
			if e.Tick > lastTick {
				lastTick = e.Tick
			}
			haveTick = true
		case logrec.DirSend:
			actions++
			byType[base.Type]++
			if verbose {
				logger.Printf("  tick %6d  %s", e.Tick, compact(e.Msg))
			}
		}
	}

	logger.Printf("%s: %d frames (ticks %d..%d), %d actions", path, frames, firstTick, lastTick, actions)
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		logger.Printf("  %-22s %d", t, byType[t])
	}
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
