// Package export writes a cake day calendar to CSV or JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/cakeday/core/model"
)

// NameSeparator joins attendee names in the Employees column.
const NameSeparator = ", "

// Row is one line of the CSV calendar.
type Row struct {
	Date       string `csv:"Date" json:"date"`
	SmallCakes int    `csv:"Small Cakes" json:"small_cakes"`
	LargeCakes int    `csv:"Large Cakes" json:"large_cakes"`
	Employees  string `csv:"Employees" json:"employees"`
}

// Rows converts cake days into export rows, keeping their order.
func Rows(days []model.CakeDay) []*Row {
	rows := make([]*Row, len(days))
	for i, d := range days {
		rows[i] = &Row{
			Date:       d.Date.Format(model.DateLayout),
			SmallCakes: d.SmallCakes,
			LargeCakes: d.LargeCakes,
			Employees:  strings.Join(d.Attendees, NameSeparator),
		}
	}
	return rows
}

// WriteCSV writes days to w with a header row.
func WriteCSV(w io.Writer, days []model.CakeDay) error {
	if err := gocsv.Marshal(Rows(days), w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteJSON writes days to w as a JSON array of rows.
func WriteJSON(w io.Writer, days []model.CakeDay) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rows(days))
}

// WriteFile writes days to path, creating parent directories as needed. A
// ".json" extension selects JSON, anything else CSV.
func WriteFile(path string, days []model.CakeDay) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return WriteJSON(f, days)
	}
	return WriteCSV(f, days)
}
