package sheets

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/sheets/v4"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const DefaultSheetName = "Scans"

var ScanHeader = []interface{}{
	"Scan ID", "Scanned At", "Ticker", "Signal", "Front", "Back", "Front DTE", "Back DTE",
	"Front IV", "Back IV", "Forward Vol", "Forward Factor", "Earnings", "Rating", "Probability", "Risk/Reward",
}

// ScanJournal appends every accepted setup of a scan to a google sheet so
// nightly results accumulate over time.
type ScanJournal struct {
	srv           *sheets.Service
	SpreadsheetID string
	SheetName     string
}

func NewScanJournal(srv *sheets.Service, spreadsheetID, sheetName string) *ScanJournal {
	return &ScanJournal{
		srv:           srv,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
	}
}

// ScanRows converts the accepted setups of a scan into sheet rows, best rated first.
func ScanRows(result *eventmodels.ScanResult) [][]interface{} {
	rows := make([][]interface{}, 0, len(result.Accepted))
	scannedAt := result.CompletedAt.UTC().Format("2006-01-02 15:04:05")

	for _, a := range result.Accepted {
		o := a.Opportunity

		earnings := ""
		if a.Earnings.HasDate() {
			earnings = a.Earnings.EarningsDate.Format("2006-01-02")
		}

		rows = append(rows, []interface{}{
			result.ID.String(),
			scannedAt,
			o.Ticker.String(),
			string(o.Signal()),
			o.FrontDate.Format("2006-01-02"),
			o.BackDate.Format("2006-01-02"),
			o.FrontDTE,
			o.BackDTE,
			fmt.Sprintf("%.2f", o.FrontIV),
			fmt.Sprintf("%.2f", o.BackIV),
			fmt.Sprintf("%.2f", o.ForwardVol),
			fmt.Sprintf("%.2f", o.ForwardFactor),
			earnings,
			a.Rating,
			fmt.Sprintf("%.0f", a.Probability),
			fmt.Sprintf("%.1f", a.RiskReward),
		})
	}

	return rows
}

func (j *ScanJournal) AppendScan(ctx context.Context, result *eventmodels.ScanResult) error {
	rows := ScanRows(result)
	if len(rows) == 0 {
		log.Infof("ScanJournal: scan %s has no accepted setups, nothing to append", result.ID)
		return nil
	}

	hasHeader, err := j.hasHeader(ctx)
	if err != nil {
		return fmt.Errorf("ScanJournal.AppendScan: %w", err)
	}

	if !hasHeader {
		rows = append([][]interface{}{ScanHeader}, rows...)
	}

	if err := AppendRows(ctx, j.srv, j.SpreadsheetID, j.SheetName, rows); err != nil {
		return fmt.Errorf("ScanJournal.AppendScan: %w", err)
	}

	log.Infof("ScanJournal: appended %d rows to %s", len(rows), j.SheetName)
	return nil
}

func (j *ScanJournal) hasHeader(ctx context.Context) (bool, error) {
	rows, err := fetchRows(ctx, j.srv, j.SpreadsheetID, j.SheetName, "A1:A1")
	if err != nil {
		return false, err
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return false, nil
	}

	first, ok := rows[0][0].(string)
	return ok && strings.EqualFold(first, ScanHeader[0].(string)), nil
}

func AppendRows(ctx context.Context, srv *sheets.Service, spreadsheetId string, sheetName string, values [][]interface{}) error {
	row := &sheets.ValueRange{
		Values: values,
	}

	response, err := srv.Spreadsheets.Values.Append(spreadsheetId, sheetName, row).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("AppendRows: %w", err)
	}

	if response.HTTPStatusCode != 200 {
		return fmt.Errorf("AppendRows: invalid http status code: %v", response.HTTPStatusCode)
	}

	return nil
}

func fetchRows(ctx context.Context, srv *sheets.Service, spreadsheetId string, sheetName string, cells string) ([][]interface{}, error) {
	sheetRange := fmt.Sprintf("%s!%s", sheetName, cells)
	response, err := srv.Spreadsheets.Values.Get(spreadsheetId, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetchRows: %w", err)
	}

	return response.Values, nil
}
