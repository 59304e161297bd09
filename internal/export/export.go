// Package export writes a result set to JSON or CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jask/restopick/internal/recommend"
)

// Format is an export file format.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

var csvHeader = []string{"Name", "Rating", "Votes", "Cuisines", "Average Cost", "Address"}

// Exporter writes files into Dir.
type Exporter struct {
	Dir string
	Now func() time.Time
}

type record struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Votes       int     `json:"votes"`
	Cuisines    string  `json:"cuisines"`
	AverageCost float64 `json:"average_cost"`
	Address     string  `json:"address"`
}

// Write exports recs in the given format and returns the file path.
// Files are named recommendations_YYYYMMDD_HHMMSS with a numeric suffix if
// that name is taken.
func (e *Exporter) Write(recs []recommend.Recommendation, format Format) (string, error) {
	if len(recs) == 0 {
		return "", errors.New("export: nothing to export")
	}
	var write func(io.Writer, []recommend.Recommendation) error
	switch format {
	case JSON:
		write = WriteJSON
	case CSV:
		write = WriteCSV
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: mkdir: %w", err)
	}
	f, path, err := e.create(format)
	if err != nil {
		return "", err
	}
	if err := write(f, recs); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("export: write %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close: %w", err)
	}
	return path, nil
}

func (e *Exporter) create(format Format) (*os.File, string, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	base := "recommendations_" + now().Format("20060102_150405")
	for i := 1; i < 100; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(e.Dir, name+"."+string(format))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("export: create: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("export: no free file name for %s", base)
}

// WriteJSON writes recs as an indented JSON array.
func WriteJSON(w io.Writer, recs []recommend.Recommendation) error {
	out := make([]record, 0, len(recs))
	for _, r := range recs {
		out = append(out, record{
			Name:        r.Name,
			Rating:      r.Rating,
			Votes:       r.Votes,
			Cuisines:    r.Cuisines,
			AverageCost: r.AverageCost,
			Address:     r.Address,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}

// WriteCSV writes recs with a header row.
func WriteCSV(w io.Writer, recs []recommend.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Name,
			formatNumber(r.Rating),
			strconv.Itoa(r.Votes),
			r.Cuisines,
			formatNumber(r.AverageCost),
			r.Address,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
