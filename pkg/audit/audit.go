// Package audit maintains the append-only eviction trail: one JSON
// object per line, one line per removed session. The cleanup engine
// only ever appends; readers are humans and the audit CLI command.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hpcloud/tail"
	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/logging"
)

// Record is one eviction entry.
type Record struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	Cwd       string    `json:"cwd,omitempty"`
	TTY       string    `json:"tty,omitempty"`
	Reason    string    `json:"reason"`
	ElapsedMs int64     `json:"elapsed_ms,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Log appends to and reads one audit file.
type Log struct {
	mu   sync.Mutex
	path string
	log  *logrus.Entry
}

// NewLog creates a log backed by the file at path. The file and its
// directory are created on first append.
func NewLog(path string) *Log {
	return &Log{
		path: path,
		log:  logging.NewLogger("audit"),
	}
}

// Path returns the audit file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record. Failures are logged and swallowed: the
// audit trail is diagnostic only and must never block an eviction.
func (l *Log) Append(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.append(rec); err != nil {
		l.log.WithError(err).WithField("session_id", rec.SessionID).Warn("Failed to append audit record")
	}
}

func (l *Log) append(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// ReadAll parses every record currently in the file, oldest first. A
// missing file yields no records; lines that fail to parse are skipped.
func (l *Log) ReadAll() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			l.log.WithError(err).Debug("Skipping unparsable audit line")
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Follow streams records as they are appended until ctx is done. With
// fromStart the existing contents are replayed first. The returned
// channel closes when following stops.
func (l *Log) Follow(ctx context.Context, fromStart bool) (<-chan Record, error) {
	cfg := tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: stdlog.New(io.Discard, "", 0),
	}
	if fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	} else {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(l.path, cfg)
	if err != nil {
		return nil, err
	}

	out := make(chan Record)
	go func() {
		defer close(out)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-t.Lines:
				if !ok {
					return
				}
				if line.Err != nil {
					continue
				}
				var rec Record
				if err := json.Unmarshal([]byte(line.Text), &rec); err != nil {
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
