package trace

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
)

// Writer renders decoded events.
type Writer interface {
	WriteEvent(ev decoder.Event) error
	Flush() error
}

// NewWriter returns a writer for "text", "json" or "csv".
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &textWriter{w: bufio.NewWriter(w)}, nil
	case "json":
		bw := bufio.NewWriter(w)
		return &jsonWriter{bw: bw, enc: json.NewEncoder(bw)}, nil
	case "csv":
		return &csvWriter{w: csv.NewWriter(w)}, nil
	}
	return nil, fmt.Errorf("trace: unknown output format %q", format)
}

type textWriter struct {
	w *bufio.Writer
}

func (t *textWriter) WriteEvent(ev decoder.Event) error {
	_, err := fmt.Fprintf(t.w, "%s-%s %s\n", formatSeconds(ev.Start), formatSeconds(ev.End), ev)
	return err
}

func (t *textWriter) Flush() error { return t.w.Flush() }

// jsonEvent is the line-delimited JSON shape of an event.
type jsonEvent struct {
	Type  string            `json:"type"`
	Start float64           `json:"start"`
	End   float64           `json:"end"`
	Bits  int               `json:"bits"`
	Data  map[string]string `json:"data"`
}

type jsonWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

func (j *jsonWriter) WriteEvent(ev decoder.Event) error {
	return j.enc.Encode(jsonEvent{
		Type:  ev.Type(),
		Start: ev.Start.Seconds(),
		End:   ev.End.Seconds(),
		Bits:  ev.Bits,
		Data:  ev.Fields(),
	})
}

func (j *jsonWriter) Flush() error { return j.bw.Flush() }

type csvWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

func (c *csvWriter) WriteEvent(ev decoder.Event) error {
	if !c.wroteHeader {
		c.wroteHeader = true
		if err := c.w.Write([]string{"type", "start", "end", "reg", "to_target", "to_host", "instruction"}); err != nil {
			return err
		}
	}
	return c.w.Write([]string{
		ev.Type(),
		formatSeconds(ev.Start),
		formatSeconds(ev.End),
		string(ev.Kind),
		ev.ToTargetHex(),
		ev.ToHostHex(),
		ev.Instruction,
	})
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
