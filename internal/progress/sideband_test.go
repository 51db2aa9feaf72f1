package progress

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type event struct {
	kind    string
	name    string
	current int64
	total   int64
}

type recordingTracker struct {
	events []event
}

func (r *recordingTracker) Start(operation string) *Operation {
	r.events = append(r.events, event{kind: "start", name: operation})
	return newOperation(operation)
}

func (r *recordingTracker) Update(current, total int64) {
	r.events = append(r.events, event{kind: "update", current: current, total: total})
}

func (r *recordingTracker) Complete() {
	r.events = append(r.events, event{kind: "complete"})
}

func (r *recordingTracker) Error(err error) {
	r.events = append(r.events, event{kind: "error", name: err.Error()})
}

func TestSidebandWriter_Stages(t *testing.T) {
	rec := &recordingTracker{}
	w := NewSidebandWriter(rec)

	stream := "Enumerating objects: 5, done.\n" +
		"Counting objects:  40% (2/5)\r" +
		"Counting objects: 100% (5/5), done.\n" +
		"Compressing objects:  50% (1/2)\r"

	n, err := w.Write([]byte(stream))
	assert.NoError(t, err)
	assert.Equal(t, len(stream), n)

	// the split line is only handled once terminated
	_, _ = w.Write([]byte("Compressing objects: 100% (2/2)"))
	_, _ = w.Write([]byte(", done.\nTotal 5 (delta 0), reused 0 (delta 0)\n"))

	assert.Equal(t, []event{
		{kind: "start", name: "Counting objects"},
		{kind: "update", current: 2, total: 5},
		{kind: "update", current: 5, total: 5},
		{kind: "complete"},
		{kind: "start", name: "Compressing objects"},
		{kind: "update", current: 1, total: 2},
		{kind: "update", current: 2, total: 2},
		{kind: "complete"},
	}, rec.events)
}

func TestSidebandWriter_RemotePrefixAndFlush(t *testing.T) {
	rec := &recordingTracker{}
	w := NewSidebandWriter(rec)

	_, _ = w.Write([]byte("remote: Receiving objects:  10% (1/10)"))
	w.Flush()

	assert.Equal(t, []event{
		{kind: "start", name: "Receiving objects"},
		{kind: "update", current: 1, total: 10},
		{kind: "complete"},
	}, rec.events)

	// nothing running any more
	w.Flush()
	assert.Len(t, rec.events, 3)
}

func TestSidebandWriter_Fail(t *testing.T) {
	rec := &recordingTracker{}
	w := NewSidebandWriter(rec)

	w.Fail(errors.New("ignored"))
	assert.Empty(t, rec.events)

	_, _ = w.Write([]byte("Counting objects:  40% (2/5)\r"))
	w.Fail(errors.New("unexpected EOF"))

	assert.Equal(t, event{kind: "error", name: "unexpected EOF"}, rec.events[len(rec.events)-1])
}

func TestSidebandWriter_UnterminatedText(t *testing.T) {
	rec := &recordingTracker{}
	w := NewSidebandWriter(rec)

	chunk := strings.Repeat("x", 1024)
	for i := 0; i < 16; i++ {
		n, err := w.Write([]byte(chunk))
		assert.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}
	assert.LessOrEqual(t, len(w.pending), maxPendingLine+len(chunk))

	// the rest of the oversized line is dropped, the next one is parsed
	_, _ = w.Write([]byte("Counting objects: 10% (1/10)\nCounting objects: 20% (2/10)\n"))

	assert.Equal(t, []event{
		{kind: "start", name: "Counting objects"},
		{kind: "update", current: 2, total: 10},
	}, rec.events)
}
