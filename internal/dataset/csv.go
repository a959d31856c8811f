// Package dataset loads design matrices and targets from CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned when a CSV source holds no sample rows.
var ErrNoData = errors.New("dataset: no samples")

// Dataset holds a design matrix and its targets.
type Dataset struct {
	Features [][]float64 // [num_samples, num_features]
	Targets  []float64   // [num_samples]
	Names    []string    // Feature column names, "bias" for an added intercept
	Target   string      // Target column name
}

// Options configures CSV parsing.
type Options struct {
	Header     bool // First row holds column names
	Target     int  // Target column index; negative counts from the end (-1 = last)
	Bias       bool // Prepend a constant 1 feature column
	MaxSamples int  // Maximum number of samples to load (0 = all)
}

// DefaultOptions returns options for a headed CSV whose last column is the target.
func DefaultOptions() Options {
	return Options{
		Header: true,
		Target: -1,
	}
}

// Load reads a dataset from a CSV file.
//
// CSV format (header optional):
//
//	size,rooms,price
//	50,1,100
//	80,2,160
func Load(filename string, opts Options) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return Read(file, opts)
}

// Read parses a dataset from CSV records on r.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}

	var header []string
	if opts.Header && len(records) > 0 {
		header, records = records[0], records[1:]
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	cols := len(records[0])
	if cols < 2 {
		return nil, errors.Errorf("need at least one feature and one target column, got %d columns", cols)
	}
	target := opts.Target
	if target < 0 {
		target += cols
	}
	if target < 0 || target >= cols {
		return nil, errors.Errorf("target column %d out of range [0, %d)", opts.Target, cols)
	}

	if opts.MaxSamples > 0 && len(records) > opts.MaxSamples {
		records = records[:opts.MaxSamples]
	}

	ds := &Dataset{
		Features: make([][]float64, len(records)),
		Targets:  make([]float64, len(records)),
	}
	ds.Names, ds.Target = columnNames(header, cols, target)

	offset := 0
	if opts.Bias {
		offset = 1
		ds.Names = append([]string{"bias"}, ds.Names...)
	}

	for i, record := range records {
		if len(record) != cols {
			return nil, errors.Errorf("invalid record length at row %d: got %d, want %d", i+1, len(record), cols)
		}

		row := make([]float64, cols-1+offset)
		if opts.Bias {
			row[0] = 1
		}
		k := offset
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid value at row %d, column %d", i+1, j+1)
			}
			if j == target {
				ds.Targets[i] = v
				continue
			}
			row[k] = v
			k++
		}
		ds.Features[i] = row
	}

	return ds, nil
}

func columnNames(header []string, cols, target int) ([]string, string) {
	names := make([]string, 0, cols-1)
	var targetName string
	for j := 0; j < cols; j++ {
		name := fmt.Sprintf("x%d", j)
		if j < len(header) && strings.TrimSpace(header[j]) != "" {
			name = strings.TrimSpace(header[j])
		}
		if j == target {
			targetName = name
			continue
		}
		names = append(names, name)
	}
	return names, targetName
}

// NumSamples returns the number of samples.
func (d *Dataset) NumSamples() int {
	return len(d.Targets)
}

// Split divides the dataset into train and validation sets.
// valRatio is the fraction of samples held out for validation; the split
// keeps file order, with the validation samples taken from the end.
func (d *Dataset) Split(valRatio float64) (train, val *Dataset) {
	n := d.NumSamples()
	valSize := int(float64(n) * valRatio)
	trainSize := n - valSize

	train = &Dataset{
		Features: d.Features[:trainSize],
		Targets:  d.Targets[:trainSize],
		Names:    d.Names,
		Target:   d.Target,
	}
	val = &Dataset{
		Features: d.Features[trainSize:],
		Targets:  d.Targets[trainSize:],
		Names:    d.Names,
		Target:   d.Target,
	}
	return train, val
}

// Column describes one column of the dataset.
type Column struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary returns per-column statistics for every feature followed by the target.
func (d *Dataset) Summary() []Column {
	if d.NumSamples() == 0 {
		return nil
	}

	out := make([]Column, 0, len(d.Names)+1)
	values := make([]float64, d.NumSamples())
	for j, name := range d.Names {
		for i, row := range d.Features {
			values[i] = row[j]
		}
		out = append(out, describe(name, values))
	}
	return append(out, describe(d.Target, d.Targets))
}

func describe(name string, values []float64) Column {
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return Column{Name: name, Mean: mean, StdDev: std, Min: lo, Max: hi}
}
