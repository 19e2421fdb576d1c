// Package log records controller sessions as zstd-compressed JSONL: every
// frame received and action sent, in channel order, for offline replay.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Entry directions.
const (
	DirRecv = "recv"
	DirSend = "send"
)

// Entry is one line of a session log.
type Entry struct {
	Dir  string          `json:"dir"`
	Tick uint64          `json:"tick,omitempty"`
	Msg  json.RawMessage `json:"msg"`
}

// Recorder writes session entries to hour-rotated .jsonl.zst files under
// baseDir.
type Recorder struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewRecorder(baseDir, prefix string) *Recorder {
	return &Recorder{baseDir: baseDir, prefix: prefix}
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

// Recv records an inbound frame.
func (r *Recorder) Recv(tick uint64, raw []byte) error {
	return r.write(Entry{Dir: DirRecv, Tick: tick, Msg: json.RawMessage(raw)})
}

// Send records an outbound action. v is marshaled as sent on the wire.
func (r *Recorder) Send(tick uint64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.write(Entry{Dir: DirSend, Tick: tick, Msg: b})
}

func (r *Recorder) write(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != r.curHour {
		if err := r.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *Recorder) rotateLocked(hour string) error {
	if err := r.closeLocked(); err != nil {
		return err
	}
	path := r.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f = f
	r.enc = enc
	r.w = bufio.NewWriterSize(enc, 128*1024)
	r.curHour = hour
	return nil
}

func (r *Recorder) closeLocked() error {
	var err1 error
	if r.w != nil {
		_ = r.w.Flush()
	}
	if r.enc != nil {
		err1 = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.w = nil
	return err1
}

func (r *Recorder) pathForHour(hour string) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", r.prefix, hour))
}

// ReadFile decodes every entry of one session log file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// ListFiles returns the session log files under dir, sorted by name (and so
// by hour).
func ListFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
