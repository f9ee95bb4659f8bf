package applog

import (
	"errors"
	"io"
	"os"
	"time"
)

const maxChunkBytes int64 = 512 * 1024

// Snapshot 一段增量日志，From/To/End 均为字节偏移
type Snapshot struct {
	Running   bool   `json:"running"`
	Pid       int    `json:"pid,omitempty"`
	StartedAt string `json:"startedAt,omitempty"`
	Path      string `json:"path,omitempty"`

	From int64  `json:"from"`
	To   int64  `json:"to"`
	End  int64  `json:"end"`
	Lost bool   `json:"lost"`
	Text string `json:"text"`

	Error string `json:"error,omitempty"`
}

// LogsSince reads at most maxChunkBytes of path starting at since. When since is past
// the end (file truncated or rotated) reading restarts at 0 and Lost is set.
func LogsSince(path string, since int64, pid int, startedAt time.Time) Snapshot {
	snap := Snapshot{Running: true, Pid: pid, Path: path}
	if !startedAt.IsZero() {
		snap.StartedAt = startedAt.Format(time.RFC3339Nano)
	}
	if path == "" {
		return snap
	}
	if err := readChunk(path, since, maxChunkBytes, &snap); err != nil {
		snap.Error = err.Error()
	}
	return snap
}

func readChunk(path string, since, maxBytes int64, snap *Snapshot) error {
	if maxBytes <= 0 {
		return errors.New("maxBytes must be > 0")
	}
	if since < 0 {
		since = 0
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	end := st.Size()
	from := since
	lost := false
	if from > end {
		from, lost = 0, true
	}
	if _, err := f.Seek(from, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(f, min(end-from, maxBytes)))
	if err != nil {
		return err
	}

	snap.From = from
	snap.To = from + int64(len(data))
	snap.End = end
	snap.Lost = lost
	snap.Text = string(data)
	return nil
}
