package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/sptracker/internal/ledger"
	"github.com/example/sptracker/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Recorder records a solved attempt
type Recorder interface {
	RecordAttempt(ctx context.Context, req ledger.AttemptRequest) ([]models.Submission, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	LinkColumn     string // Column with the problem link
	CategoryColumn string // Column with the category
	TypeColumn     string // Column with the solve type
	LevelColumn    string // Column with the level
	TabColumn      string // Column with the tab, optional
	RtsColumn      string // Column with the repetition count, optional
	SheetName      string // Name of the sheet to import, empty selects the first one
	StartRow       int    // The row to start importing from (1-based index)
	DefaultTab     string // Tab used when the row has none
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		LinkColumn:     "A",
		CategoryColumn: "B",
		TypeColumn:     "C",
		LevelColumn:    "D",
		TabColumn:      "E",
		RtsColumn:      "F",
		StartRow:       2, // skip header
		DefaultTab:     "IP",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Recorded       int
	Skipped        int
	Errors         []string
}

// ImportSubmissions records one attempt per row of an Excel or CSV file.
// Rows that fail are reported in the result and do not stop the import.
func ImportSubmissions(ctx context.Context, rec Recorder, config ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		if err := processRow(ctx, rec, row, config); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Recorded++
	}

	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func processRow(ctx context.Context, rec Recorder, row []string, config ImportConfig) error {
	req := ledger.AttemptRequest{
		Link:     cell(row, config.LinkColumn),
		Category: cell(row, config.CategoryColumn),
		Type:     cell(row, config.TypeColumn),
		Level:    cell(row, config.LevelColumn),
		Tab:      cell(row, config.TabColumn),
	}
	if req.Tab == "" {
		req.Tab = config.DefaultTab
	}
	if raw := cell(row, config.RtsColumn); raw != "" {
		rts, err := strconv.Atoi(raw)
		if err != nil || rts < 1 {
			return fmt.Errorf("invalid rts %q", raw)
		}
		req.Repetitions = rts
	}

	if _, err := rec.RecordAttempt(ctx, req); err != nil {
		return err
	}
	return nil
}

// cell returns the trimmed value of column in row, or "" when the column is
// unset or out of range
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
