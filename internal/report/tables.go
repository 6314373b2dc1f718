package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"etspga/internal/eval"
	"etspga/internal/ga"
)

var counts = message.NewPrinter(language.English)

// WriteComparison renders the genetic result next to the exact baseline
func WriteComparison(w io.Writer, cmp eval.Comparison) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("GA VS BRUTE FORCE")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Solver", "Length", "Evaluated", "Time", "Allocated", "Mallocs"})
	t.AppendRow(table.Row{
		"genetic",
		formatLength(cmp.GA.Fitness),
		counts.Sprintf("%d rounds", cmp.GA.Rounds),
		cmp.GA.Usage.Elapsed.String(),
		formatBytes(cmp.GA.Usage.AllocBytes),
		counts.Sprint(cmp.GA.Usage.Mallocs),
	})

	if cmp.Baseline != nil {
		b := cmp.Baseline
		t.AppendRow(table.Row{
			"brute force",
			formatLength(b.Fitness),
			counts.Sprintf("%d orders", b.Evaluated),
			b.Usage.Elapsed.String(),
			formatBytes(b.Usage.AllocBytes),
			counts.Sprint(b.Usage.Mallocs),
		})
		t.AppendFooter(table.Row{"gap", fmt.Sprintf("%.2f%%", cmp.Gap()*100)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}

// WritePopulation renders every tour of pop with its length
func WritePopulation(w io.Writer, title string, pop *ga.Population) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", "Length", "Tour"})
	for i, tour := range pop.Tours() {
		t.AppendRow(table.Row{i, formatLength(tour.Fitness()), tour.String()})
	}

	s := pop.Summary()
	t.AppendFooter(table.Row{"", "mean " + formatLength(s.Mean), "std " + formatLength(s.Std)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: 120},
	})
	t.Render()
}

// WriteTour renders a single tour one city per row
func WriteTour(w io.Writer, title string, tour *ga.Tour) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Stop", "X", "Y", "Leg"})
	nodes := tour.Nodes()
	for i, p := range nodes {
		next := nodes[(i+1)%len(nodes)]
		t.AppendRow(table.Row{i, p.X, p.Y, formatLength(ga.Distance(p, next))})
	}
	t.AppendFooter(table.Row{"", "", "total", formatLength(tour.Fitness())})
	t.Render()
}

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
