package waitlist

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/pkg/constants"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

// ParseExportFormat accepts "", "json" and "csv" in any case. Empty means JSON.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatJSON:
		return ExportFormatJSON, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	}
	return "", fmt.Errorf("waitlist: unsupported export format %q", raw)
}

func (f ExportFormat) ContentType() string {
	if f == ExportFormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// FileName is pledg_waitlist_<YYYY-MM-DD>.<ext>, dated in UTC.
func (f ExportFormat) FileName(now time.Time) string {
	return constants.WaitlistExportPrefix + now.UTC().Format(constants.ISODateFormat) + "." + string(f)
}

// ExportFileName names a JSON export taken at now.
func ExportFileName(now time.Time) string {
	return ExportFormatJSON.FileName(now)
}

func writeJSONSnapshot(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("waitlist: encode export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("waitlist: write export: %w", err)
	}
	return nil
}

var csvColumns = []string{
	"id", "firstName", "lastName", "email", "phone", "company", "role",
	"interestType", "investmentAmount", "loanAmount", "additionalInfo",
	"agreeToTerms", "marketingConsent", "status", "submittedAt", "updatedAt",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.ISOTimestampFormat)
}

func csvRow(r Record) []string {
	updatedAt := ""
	if r.UpdatedAt != nil {
		updatedAt = formatTimestamp(*r.UpdatedAt)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.FirstName,
		r.LastName,
		r.Email,
		r.Phone,
		r.Company,
		r.Role,
		string(r.InterestType),
		r.InvestmentAmount,
		r.LoanAmount,
		r.AdditionalInfo,
		strconv.FormatBool(r.AgreeToTerms),
		strconv.FormatBool(r.MarketingConsent),
		string(r.Status),
		formatTimestamp(r.SubmittedAt),
		updatedAt,
	}
}

// writeCSVSnapshot builds the frame column by column, every column typed as
// string so ids and timestamps are written exactly as formatted.
func writeCSVSnapshot(w io.Writer, records []Record) error {
	columns := make([][]string, len(csvColumns))
	for i := range columns {
		columns[i] = make([]string, 0, len(records))
	}
	for _, r := range records {
		for i, value := range csvRow(r) {
			columns[i] = append(columns[i], value)
		}
	}

	cols := make([]series.Series, len(csvColumns))
	for i, name := range csvColumns {
		cols[i] = series.New(columns[i], series.String, name)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return fmt.Errorf("waitlist: build csv export: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("waitlist: write csv export: %w", err)
	}
	return nil
}
