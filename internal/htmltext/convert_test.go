package htmltext

import (
	"strings"
	"testing"
)

func TestConvertTable(t *testing.T) {
	markup := `<html><body>
	<table>
		<tr><th> Metric </th><th>Value</th></tr>
		<tr><td>Revenue</td><td> 383,285 </td></tr>
		<tr><td>Net income</td><td>96,995</td></tr>
	</table>
	</body></html>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if !strings.Contains(out, "**TABLE:**") {
		t.Error("expected **TABLE:** marker in output")
	}
	if !strings.Contains(out, "**Metric | Value**") {
		t.Errorf("expected bold-wrapped header row, got:\n%s", out)
	}
	if !strings.Contains(out, "Revenue | 383,285") {
		t.Errorf("expected first data row, got:\n%s", out)
	}
	if !strings.Contains(out, "Net income | 96,995") {
		t.Errorf("expected second data row, got:\n%s", out)
	}
}

func TestConvertTableDropsEmptyRows(t *testing.T) {
	markup := `<table>
		<tr><td>  </td><td></td></tr>
		<tr><td>Assets</td><td>352,583</td></tr>
		<tr><td> </td><td>   </td></tr>
	</table>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "|") {
			rows = append(rows, l)
		}
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 surviving row, got %d:\n%s", len(rows), out)
	}
	if rows[0] != "Assets | 352,583" {
		t.Errorf("got row %q, want %q", rows[0], "Assets | 352,583")
	}
}

func TestConvertOrderedList(t *testing.T) {
	markup := `<ol>
		<li>Risk factors</li>
		<li>   </li>
		<li>Legal proceedings</li>
	</ol>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if !strings.Contains(out, "1. Risk factors") {
		t.Errorf("expected numbered first item, got:\n%s", out)
	}
	// The empty item is skipped and does not consume a number.
	if !strings.Contains(out, "2. Legal proceedings") {
		t.Errorf("expected second item numbered 2, got:\n%s", out)
	}
	if strings.Contains(out, "3.") {
		t.Errorf("empty item should not consume a number, got:\n%s", out)
	}
}

func TestConvertUnorderedList(t *testing.T) {
	markup := `<ul><li>Exhibit 31.1</li><li>Exhibit 32.1</li></ul>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if !strings.Contains(out, "- Exhibit 31.1") || !strings.Contains(out, "- Exhibit 32.1") {
		t.Errorf("expected dashed list items, got:\n%s", out)
	}
}

func TestConvertStripsNoise(t *testing.T) {
	markup := `<html><head><script>alert(1)</script><style>p{color:red}</style></head>
	<body>
		<nav>Navigation</nav>
		<p>Annual Report</p>
		<div style="display: none">hidden text</div>
		<span style="VISIBILITY: HIDDEN">also hidden</span>
		<img src="logo.png"/>
		<footer>Page 1</footer>
	</body></html>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	for _, banned := range []string{"alert", "color:red", "Navigation", "hidden text", "also hidden", "Page 1"} {
		if strings.Contains(out, banned) {
			t.Errorf("output should not contain %q, got:\n%s", banned, out)
		}
	}
	if !strings.Contains(out, "Annual Report") {
		t.Errorf("content paragraph lost, got:\n%s", out)
	}
}

func TestConvertDeterministic(t *testing.T) {
	markup := `<body><h2>Item 1A</h2><p>Risks</p>
	<table><tr><th>A</th></tr><tr><td>1</td></tr></table>
	<ul><li>x</li></ul></body>`

	first, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	second, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if first != second {
		t.Error("expected byte-identical output across conversions")
	}
}

func TestConvertCollapsesBlankRuns(t *testing.T) {
	markup := `<body><p>one</p><div></div><div></div><div></div><div></div><p>two</p></body>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("expected blank runs collapsed, got:\n%q", out)
	}
}

func TestConvertHeadings(t *testing.T) {
	out, err := Convert(`<body><h2>Item 7. MD&amp;A</h2><p>Discussion</p></body>`)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !strings.Contains(out, "## Item 7. MD&A") {
		t.Errorf("expected heading line, got:\n%s", out)
	}
}

func TestNestedTableStaysInCell(t *testing.T) {
	markup := `<table>
		<tr><td>Outer<table><tr><td>inner</td></tr></table></td><td>B</td></tr>
	</table>`

	out, err := Convert(markup)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	// The nested table's text belongs to the outer cell; it must not
	// produce a second row.
	if got := strings.Count(out, "|"); got != 1 {
		t.Errorf("expected a single pipe (one 2-cell row), got %d in:\n%s", got, out)
	}
	if !strings.Contains(out, "Outer inner | B") {
		t.Errorf("expected nested text flattened into outer cell, got:\n%s", out)
	}
}

func TestPostProcessArtifacts(t *testing.T) {
	in := "Revenue | 100\n| | |\n|---|---|\n##\nNet | 40"
	out := postProcess(in)

	if strings.Contains(out, "| | |") || strings.Contains(out, "|---|") {
		t.Errorf("table artifacts should be removed, got:\n%q", out)
	}
	if strings.Contains(out, "##") {
		t.Errorf("empty heading should be removed, got:\n%q", out)
	}
	if !strings.Contains(out, "Revenue | 100") || !strings.Contains(out, "Net | 40") {
		t.Errorf("real rows must survive, got:\n%q", out)
	}
}

func TestPostProcessHorizontalWhitespace(t *testing.T) {
	got := postProcess("a\t\t b    c  ")
	if got != "a b c" {
		t.Errorf("got %q, want %q", got, "a b c")
	}
}
