// Package xlsx keeps the attendance log in a spreadsheet that office staff
// open directly. The workbook is reopened on every operation so edits made
// between polls are picked up.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

const (
	colDate = iota
	colEntry
	colExit
	colPersonID
	colName
	colDuration
)

type Store struct {
	path     string
	location *time.Location
	logger   *slog.Logger

	mu sync.Mutex
}

// New returns a store for the workbook at path. Times are read and written
// in time.Local.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:     path,
		location: time.Local,
		logger:   logger.With("component", "logstore.xlsx"),
	}
}

// Init creates the workbook with the header row when it does not exist yet.
func (s *Store) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return classify(fmt.Errorf("stat workbook: %w", err))
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(logstore.Header))
	for i, h := range logstore.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return classify(fmt.Errorf("save workbook: %w", err))
	}

	s.logger.Info("attendance workbook created", slog.String("path", s.path))
	return nil
}

func (s *Store) AppendEntry(_ context.Context, personID, name string, entryTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, rows, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	entry := entryTime.In(s.location)
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}

	values := []interface{}{
		entry.Format(logstore.DateLayout),
		logstore.FormatClock(entry),
		"",
		personID,
		name,
		"",
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write entry row: %w", err)
	}

	if err := f.Save(); err != nil {
		return classify(fmt.Errorf("save workbook: %w", err))
	}
	return nil
}

// UpdateExit scans from the bottom for the person's open row and fills the
// exit time and duration in place.
func (s *Store) UpdateExit(_ context.Context, personID string, exitTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, rows, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if cell(row, colPersonID) != personID || cell(row, colExit) != "" {
			continue
		}

		rec, err := logstore.ParseRow(cell(row, colDate), cell(row, colEntry), "", "", personID, cell(row, colName), s.location)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		exit := exitTime.In(s.location)
		exitCell, _ := excelize.CoordinatesToCellName(colExit+1, i+1)
		durationCell, _ := excelize.CoordinatesToCellName(colDuration+1, i+1)

		if err := f.SetCellValue(sheet, exitCell, logstore.FormatClock(exit)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, durationCell, logstore.FormatDuration(exit.Sub(rec.EntryAt))); err != nil {
			return err
		}

		if err := f.Save(); err != nil {
			return classify(fmt.Errorf("save workbook: %w", err))
		}
		return nil
	}

	return logstore.ErrNoOpenRow
}

// Records returns every data row. Rows that cannot be parsed are skipped
// with a warning.
func (s *Store) Records(_ context.Context) ([]logstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, rows, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records := make([]logstore.Record, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if cell(row, colPersonID) == "" {
			continue
		}

		rec, err := logstore.ParseRow(cell(row, colDate), cell(row, colEntry), cell(row, colExit),
			cell(row, colDuration), cell(row, colPersonID), cell(row, colName), s.location)
		if err != nil {
			s.logger.Warn("skipping malformed row",
				slog.Int("row", i+1),
				slog.String("error", err.Error()),
			)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) open() (*excelize.File, string, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, "", nil, classify(fmt.Errorf("open workbook: %w", err))
	}

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, "", nil, fmt.Errorf("read rows: %w", err)
	}

	return f, sheet, rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// classify maps a locked workbook to domain.ErrStoreBusy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) || strings.Contains(err.Error(), "being used by another process") {
		return domain.ErrStoreBusy.WithError(err)
	}
	return err
}

// Export writes records to a fresh workbook at path, header first. An
// existing file is overwritten.
func Export(path string, records []logstore.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(logstore.Header))
	for i, h := range logstore.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cells := logstore.Row(r)
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	return nil
}
