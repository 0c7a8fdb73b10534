package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

// WriteCSV writes opportunities in the given order, numbers rounded to 2 decimals.
func WriteCSV(w io.Writer, opportunities []*eventmodels.Opportunity) error {
	rows := make([]*eventmodels.OpportunityCSVDTO, 0, len(opportunities))
	for _, o := range opportunities {
		rows = append(rows, eventmodels.NewOpportunityCSVDTO(o))
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}

	return nil
}

func ExportCSV(dir, prefix string, opportunities []*eventmodels.Opportunity, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("ExportCSV: failed to create directory: %w", err)
	}

	outFilePath := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, now.Format("2006-01-02_15-04-05")))

	file, err := os.Create(outFilePath)
	if err != nil {
		return "", fmt.Errorf("ExportCSV: failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, opportunities); err != nil {
		return "", fmt.Errorf("ExportCSV: %w", err)
	}

	return outFilePath, nil
}

// ReadCSV loads opportunities exported by WriteCSV. Rows that fail validation
// are returned as errors alongside the rows that loaded.
func ReadCSV(r io.Reader) ([]*eventmodels.Opportunity, []error, error) {
	var rows []*eventmodels.OpportunityCSVDTO
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("ReadCSV: %w", err)
	}

	var opportunities []*eventmodels.Opportunity
	var rowErrs []error
	for i, row := range rows {
		opp, err := row.ToModel()
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}

		opportunities = append(opportunities, opp)
	}

	return opportunities, rowErrs, nil
}
