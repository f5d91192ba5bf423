package nn

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// LayerSummary is one row of a network description.
type LayerSummary struct {
	Name    string
	In, Out int
	MACs    int  // multiply-accumulates per example, In*Out for Dense
	Shaped  bool // false for layers without fixed widths (Flatten)
}

// Describe returns one summary per layer in forward order.
func (n *Network) Describe() []LayerSummary {
	out := make([]LayerSummary, len(n.layers))
	for i, layer := range n.layers {
		s := LayerSummary{Name: layer.Name()}
		if d, ok := layer.(*Dense); ok {
			s.In, s.Out, s.MACs, s.Shaped = d.in, d.out, d.in*d.out, true
		}
		out[i] = s
	}
	return out
}

const summaryRule = "============================================================="

// WriteSummary renders summaries as a table. Layers without fixed widths
// show "--" in every numeric column.
func WriteSummary(w io.Writer, summaries []LayerSummary) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Layer Type\tInput\tOutput\tMACs")
	for _, s := range summaries {
		in, out, macs := "--", "--", "--"
		if s.Shaped {
			in, out, macs = strconv.Itoa(s.In), strconv.Itoa(s.Out), strconv.Itoa(s.MACs)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, in, out, macs)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// The rule goes under the header; tabwriter would treat it as a cell.
	header, rows, _ := strings.Cut(buf.String(), "\n")
	_, err := fmt.Fprintf(w, "%s\n%s\n%s%s\n", header, summaryRule, rows, summaryRule)
	return err
}
