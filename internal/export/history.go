package export

import (
	"fmt"

	"practice-service/internal/models"

	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

var historyHeader = []interface{}{
	"Completed At", "Subject", "Type", "Difficulty", "Complexity",
	"Content", "Translation", "Your Answer", "Correct", "Feedback",
}

// HistoryWorkbook lays out completed practices one per row. The caller
// owns the returned file and must Close it.
func HistoryWorkbook(practices []models.Practice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %v", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %v", err)
	}

	for i, p := range practices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{
			completedAt(p),
			p.LearningSubject,
			string(p.Type),
			p.Difficulty,
			p.Complexity,
			p.Content,
			p.Translation,
			deref(p.UserAnswer),
			correctLabel(p.IsCorrect),
			p.Feedback,
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %v", i+2, err)
		}
	}

	if err := f.SetColWidth(historySheet, "F", "G", 40); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(historySheet, "J", "J", 50); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func completedAt(p models.Practice) string {
	if p.CompletedAt == nil {
		return ""
	}
	return p.CompletedAt.UTC().Format("2006-01-02 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func correctLabel(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	default:
		return "no"
	}
}
