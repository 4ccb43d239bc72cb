package report

import (
	"fmt"
	"strings"

	"designspace/domain/paradigm"
	"designspace/domain/run"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Document is everything a rendered report covers
type Document struct {
	Title             string
	Summary           *Summary
	ExplainedVariance []float64
	Reconstructions   []run.Reconstruction
	Columns           []string
	Skipped           []run.SkippedPair
}

// Markdown renders the document
func Markdown(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)

	if doc.Summary != nil {
		writeSummary(&b, doc.Summary)
	}

	if len(doc.ExplainedVariance) > 0 {
		b.WriteString("## Explained variance\n\n| Component | Ratio | Cumulative |\n|---|---|---|\n")
		var cum float64
		for i, v := range doc.ExplainedVariance {
			cum += v
			fmt.Fprintf(&b, "| PC%d | %.3f | %.3f |\n", i+1, v, cum)
		}
		b.WriteString("\n")
	}

	if len(doc.Reconstructions) > 0 {
		b.WriteString("## Reconstructed conditions\n\n")
		b.WriteString("| Point | " + strings.Join(doc.Columns, " | ") + " |\n")
		b.WriteString("|---" + strings.Repeat("|---", len(doc.Columns)) + "|\n")
		for _, rec := range doc.Reconstructions {
			cells := rec.Row.Strings(doc.Columns)
			for i, c := range cells {
				cells[i] = escape(c)
			}
			b.WriteString("| " + escape(rec.Label) + " | " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Skipped) > 0 {
		b.WriteString("## Skipped interpolations\n\n")
		for _, s := range doc.Skipped {
			fmt.Fprintf(&b, "- %s -> %s: %s\n", s.From, s.To, s.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeSummary(b *strings.Builder, s *Summary) {
	fmt.Fprintf(b, "## Paradigms\n\n%d conditions.\n\n| Paradigm | Conditions | Share |\n|---|---|---|\n", s.Total)
	for _, c := range s.Counts {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", c.Paradigm, c.Count, 100*c.Share)
	}
	b.WriteString("\n")

	if len(s.Papers) > 0 {
		b.WriteString("## Papers\n\n| Paper | Paradigm | Conditions |\n|---|---|---|\n")
		for _, p := range s.Papers {
			fmt.Fprintf(b, "| %s | %s | %d |\n", escape(p.Paper), p.Paradigm, p.Conditions)
		}
		if s.Unmatched > 0 {
			fmt.Fprintf(b, "\n%d conditions had no recognizable author and year.\n", s.Unmatched)
		}
		b.WriteString("\n")
	}

	if len(s.Blocks) > 0 {
		fmt.Fprintf(b, "## Blocks\n\n%d blocks.\n\n| Paradigm | Blocks | Share |\n|---|---|---|\n", len(s.Blocks))
		for _, c := range s.BlockCounts {
			fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", c.Paradigm, c.Count, 100*c.Share)
		}
		b.WriteString("\n| Block | Paradigm | Paper | Conditions |\n|---|---|---|---|\n")
		for _, blk := range s.Blocks {
			fmt.Fprintf(b, "| %s | %s | %s | %d |\n", escape(blk.Block), blk.Paradigm, escape(blk.Paper), blk.Conditions)
		}
		b.WriteString("\n")
	}

	for _, v := range s.Continuous {
		fmt.Fprintf(b, "### %s\n\n| Paradigm | n | mean | std | min | median | max |\n|---|---|---|---|---|---|---|\n", escape(v.Column))
		for _, p := range paradigm.All {
			d, ok := v.ByParadigm[p]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n", p, d.Count, d.Mean, d.Std, d.Min, d.Median, d.Max)
		}
		b.WriteString("\n")
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML renders markdown to a standalone HTML page
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML([]byte(md), p, r)
}
