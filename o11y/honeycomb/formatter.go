package honeycomb

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/honeycombio/libhoney-go/transmission"

	"github.com/zetteln/server/colourise"
)

// TextSender implements transmission.Sender by writing each event as a single
// human-readable line to w, optionally colourised for a terminal.
type TextSender struct {
	mu sync.Mutex

	w      io.Writer
	colour bool

	responses chan transmission.Response
}

func (t *TextSender) Start() error {
	t.responses = make(chan transmission.Response, 100)
	return nil
}

func (t *TextSender) Stop() error  { return nil }
func (t *TextSender) Flush() error { return nil }

func (t *TextSender) Add(ev *transmission.Event) {
	line := t.format(ev)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.w.Write(line)
	t.SendResponse(transmission.Response{Metadata: ev.Metadata})
}

func (t *TextSender) TxResponses() chan transmission.Response {
	return t.responses
}

// SendResponse never blocks, a full channel drops the response and reports true.
func (t *TextSender) SendResponse(r transmission.Response) bool {
	select {
	case t.responses <- r:
		return false
	default:
		return true
	}
}

func (t *TextSender) format(ev *transmission.Event) []byte {
	buf := &bytes.Buffer{}
	_, _ = fmt.Fprintf(buf, "%s %s %.3fms %s",
		ev.Timestamp.Format("15:04:05"),
		t.paint(shortTraceID(ev.Data["trace.trace_id"])),
		ev.Data["duration_ms"],
		t.paint(fmt.Sprint(ev.Data["name"])),
	)

	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		if !hiddenField(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		label := k
		if t.colour && (k == "error" || k == "panic") {
			label = colourise.ErrorHighlight(k)
		}
		_, _ = fmt.Fprintf(buf, " %s=%v", label, ev.Data[k])
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func (t *TextSender) paint(s string) string {
	if !t.colour {
		return s
	}
	return colourise.ApplyColour(s)
}

// hiddenField reports fields that are already in the line prefix or are too noisy to print.
func hiddenField(k string) bool {
	switch k {
	case "name", "version", "service", "service.name", "service_name", "duration_ms", "stack":
		return true
	}
	return strings.HasPrefix(k, "trace.") || strings.HasPrefix(k, "meta.")
}

func shortTraceID(raw interface{}) string {
	id, ok := raw.(string)
	if !ok || len(id) < 5 {
		return "unkwn"
	}
	return id[len(id)-5:]
}
