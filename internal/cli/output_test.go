package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestOutput_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	o := &Output{writer: &buf}

	o.Success("ok %d", 1)
	o.Bold("title")
	table := NewTable(o, "Strike", "Premium")
	table.AddRow("100", o.FormatPnL(2.5))
	table.Render()

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("escape codes written to a non-terminal writer: %q", out)
	}
	for _, want := range []string{"ok 1", "title", "Strike  Premium", "100     +$2.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOutput_ColorAlignment(t *testing.T) {
	var buf bytes.Buffer
	o := &Output{writer: &buf, colorEnabled: true}

	green := o.FormatPnL(2.5)
	if !strings.Contains(green, "\x1b[") || stripANSI(green) != "+$2.50" {
		t.Errorf("FormatPnL = %q", green)
	}
	if got := o.paint(color.FgRed, color.Bold).Sprint("x"); stripANSI(got) != "x" {
		t.Errorf("stripANSI left %q", stripANSI(got))
	}

	table := NewTable(o, "A", "B")
	table.AddRow(green, "z")
	table.Render()
	lines := strings.Split(strings.TrimSpace(stripANSI(buf.String())), "\n")
	if len(lines) != 3 || lines[2] != "+$2.50  z" {
		t.Errorf("colored table rows misaligned: %q", lines)
	}
}
