package format

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes an EDN rendering of v.
//
// Values go through encoding/json first so json tags and TextMarshalers
// decide the shape. Object keys become keywords and map keys are sorted.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	p := ednPrinter{w: bw, pretty: pretty}
	p.value(x, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

type ednPrinter struct {
	w      *bufio.Writer
	pretty bool
}

func (p ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.w.WriteString("nil")
	case bool:
		p.w.WriteString(strconv.FormatBool(t))
	case json.Number:
		p.w.WriteString(t.String())
	case string:
		p.w.WriteString(strconv.Quote(t))
	case []any:
		p.seq('[', ']', len(t), depth, func(i int) { p.value(t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p.seq('{', '}', len(keys), depth, func(i int) {
			p.w.WriteString(keyword(keys[i]))
			p.w.WriteByte(' ')
			p.value(t[keys[i]], depth+1)
		})
	default:
		p.w.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

// seq prints n elements between open and close, one per line when pretty.
func (p ednPrinter) seq(open, close byte, n, depth int, elem func(i int)) {
	p.w.WriteByte(open)
	for i := 0; i < n; i++ {
		switch {
		case p.pretty:
			p.w.WriteByte('\n')
			p.w.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			p.w.WriteByte(' ')
		}
		elem(i)
	}
	if p.pretty && n > 0 {
		p.w.WriteByte('\n')
		p.w.WriteString(strings.Repeat("  ", depth))
	}
	p.w.WriteByte(close)
}

func keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.ReplaceAll(k, " ", "-")
	return ":" + k
}
