package host

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Dataset is the (time, position) series captured from one step-response
// run. X is elapsed milliseconds, Y is position in encoder counts.
type Dataset struct {
	X []float64
	Y []float64
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Append adds one sample.
func (d *Dataset) Append(x, y float64) {
	d.X = append(d.X, x)
	d.Y = append(d.Y, y)
}

// Len returns the sample count.
func (d *Dataset) Len() int { return len(d.X) }

// SaveCSV writes the dataset with a header row.
func (d *Dataset) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("host: save dataset: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"time_ms", "position"}); err != nil {
		return err
	}
	for i := range d.X {
		rec := []string{
			strconv.FormatFloat(d.X[i], 'g', -1, 64),
			strconv.FormatFloat(d.Y[i], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadCSV reads a dataset written by SaveCSV.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("host: load dataset: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("host: load dataset: %w", err)
	}

	d := NewDataset()
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("host: dataset row %d has %d fields", i, len(rec))
		}
		x, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("host: dataset row %d: %w", i, err)
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("host: dataset row %d: %w", i, err)
		}
		d.Append(x, y)
	}
	return d, nil
}
