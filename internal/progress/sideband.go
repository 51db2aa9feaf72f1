package progress

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Match lines like:
//
//	Counting objects:  67% (35484/52960)
//	Compressing objects: 100% (3/3), done.
//	Receiving objects: 100% (52960/52960), 298.63 MiB | 81.39 MiB/s, done.
var stageRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*?):\s*(\d+)%\s*\((\d+)/(\d+)\)(.*)$`)

// maxPendingLine bounds an unterminated line; longer text is not progress.
const maxPendingLine = 4096

// SidebandWriter turns the textual progress stream of a fetch into Tracker calls.
// It is safe to pass as the progress writer of a go-git fetch.
type SidebandWriter struct {
	mu      sync.Mutex
	tracker Tracker
	pending []byte
	stage   string
	// skipping drops input up to the next terminator after an oversized line
	skipping bool
}

// NewSidebandWriter returns a writer forwarding to tracker.
func NewSidebandWriter(tracker Tracker) *SidebandWriter {
	return &SidebandWriter{tracker: tracker}
}

// Write implements io.Writer. Lines may be terminated by \r or \n and may
// arrive split across calls.
func (w *SidebandWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexAny(w.pending, "\r\n")
		if i < 0 {
			break
		}
		line := string(w.pending[:i])
		w.pending = w.pending[i+1:]
		if w.skipping {
			w.skipping = false
			continue
		}
		w.handleLine(line)
	}
	if len(w.pending) > maxPendingLine {
		w.pending = w.pending[:0]
		w.skipping = true
	}
	return len(p), nil
}

// Flush processes any unterminated line and completes the running stage.
func (w *SidebandWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) > 0 && !w.skipping {
		w.handleLine(string(w.pending))
	}
	w.pending = nil
	w.skipping = false
	if w.stage != "" {
		w.tracker.Complete()
		w.stage = ""
	}
}

// Fail reports err against the running stage, if any.
func (w *SidebandWriter) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != "" {
		w.tracker.Error(err)
		w.stage = ""
	}
}

func (w *SidebandWriter) handleLine(line string) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "remote: "))
	if line == "" {
		return
	}

	m := stageRegex.FindStringSubmatch(line)
	if m == nil {
		return
	}
	name := m[1]
	current, _ := strconv.ParseInt(m[3], 10, 64)
	total, _ := strconv.ParseInt(m[4], 10, 64)

	if name != w.stage {
		if w.stage != "" {
			w.tracker.Complete()
		}
		w.tracker.Start(name)
		w.stage = name
	}
	w.tracker.Update(current, total)

	if strings.Contains(m[5], "done") {
		w.tracker.Complete()
		w.stage = ""
	}
}
