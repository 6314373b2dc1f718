package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"etspga/internal/eval"
	"etspga/internal/ga"
)

const (
	populationSheet = "Population"
	comparisonSheet = "Comparison"
	historySheet    = "History"
)

// WriteWorkbook saves the final population, the comparison and the
// reported round history to an xlsx file
func WriteWorkbook(path string, pop *ga.Population, cmp eval.Comparison) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), populationSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(comparisonSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(historySheet); err != nil {
		return err
	}

	header, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := writePopulationSheet(fx, pop, header); err != nil {
		return err
	}
	if err := writeComparisonSheet(fx, cmp, header); err != nil {
		return err
	}
	if err := writeHistorySheet(fx, cmp.GA, header); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func writeHeader(fx *excelize.File, sheet string, style int, cols ...interface{}) error {
	if err := fx.SetSheetRow(sheet, "A1", &cols); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(fx *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return fx.SetSheetRow(sheet, cell, &values)
}

func writePopulationSheet(fx *excelize.File, pop *ga.Population, style int) error {
	if err := writeHeader(fx, populationSheet, style, "Rank", "Length", "Tour"); err != nil {
		return err
	}
	for i, tour := range pop.Tours() {
		if err := writeRow(fx, populationSheet, i+2, i, tour.Fitness(), tour.String()); err != nil {
			return err
		}
	}
	return fx.SetColWidth(populationSheet, "C", "C", 120)
}

func writeComparisonSheet(fx *excelize.File, cmp eval.Comparison, style int) error {
	if err := writeHeader(fx, comparisonSheet, style,
		"Solver", "Length", "Evaluated", "Seconds", "Allocated bytes", "Tour"); err != nil {
		return err
	}

	g := cmp.GA
	if err := writeRow(fx, comparisonSheet, 2,
		"genetic", g.Fitness, g.Rounds, g.Usage.Elapsed.Seconds(), g.Usage.AllocBytes, bestString(g.Best)); err != nil {
		return err
	}
	if cmp.Baseline == nil {
		return nil
	}

	b := cmp.Baseline
	if err := writeRow(fx, comparisonSheet, 3,
		"brute force", b.Fitness, b.Evaluated, b.Usage.Elapsed.Seconds(), b.Usage.AllocBytes, b.Tour().String()); err != nil {
		return err
	}
	return writeRow(fx, comparisonSheet, 5, "gap", cmp.Gap())
}

func writeHistorySheet(fx *excelize.File, run eval.RunResult, style int) error {
	if err := writeHeader(fx, historySheet, style,
		"Round", "Best", "Mean", "Std", "Worst", "Admitted", "Duplicates", "Mutated", "Elapsed ms"); err != nil {
		return err
	}
	for i, s := range run.History {
		if err := writeRow(fx, historySheet, i+2,
			s.Round, s.Best, s.Mean, s.Std, s.Worst, s.Admitted, s.Duplicates, s.Mutated, s.ElapsedMS); err != nil {
			return err
		}
	}
	return nil
}

func bestString(t *ga.Tour) string {
	if t == nil {
		return ""
	}
	return t.String()
}
