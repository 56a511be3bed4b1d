package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// TimetableRow is one flattened timetable entry for CSV output.
type TimetableRow struct {
	Date      string `csv:"date"`
	Start     string `csv:"start"`
	End       string `csv:"end"`
	Type      string `csv:"type"`
	Teacher   string `csv:"teacher"`
	Student   string `csv:"student"`
	Room      string `csv:"room"`
	Duration  int    `csv:"durationMinutes"`
	BreakType string `csv:"breakType"`
	BreakFor  string `csv:"breakFor"`
}

// CSVExporter renders timetable rows into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes, header row included.
func (e *CSVExporter) Render(rows []TimetableRow) ([]byte, error) {
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return []byte(out), nil
}
