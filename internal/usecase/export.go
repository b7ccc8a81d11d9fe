package usecase

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
)

type DateRange string

const (
	RangeAll       DateRange = "all"
	RangeThisMonth DateRange = "thisMonth"
	RangeLastMonth DateRange = "lastMonth"
	RangeThisYear  DateRange = "thisYear"
)

type ExportOptions struct {
	Statuses  []entity.LeadStatus
	DateRange DateRange
}

var (
	ErrNoExportData    = &DomainError{Code: "NO_DATA", Message: "No leads available to export"}
	ErrNoFilteredData  = &DomainError{Code: "NO_DATA", Message: "No leads match the selected filters"}
	exportHeader       = []string{"Name", "Email", "Phone", "Status", "Assigned To", "Created At", "Updated At"}
	exportTimeLayout   = "2006-01-02 15:04:05"
	exportNameTimeOnly = "2006-01-02"
)

// ExportCSV renders the filtered lead set as CSV. An empty input or an empty
// filtered result is refused rather than producing an empty file.
func ExportCSV(leads []entity.Lead, opts ExportOptions, now time.Time) (filename string, data []byte, err error) {
	if len(leads) == 0 {
		return "", nil, ErrNoExportData
	}

	filtered := filterLeads(leads, opts, now)
	if len(filtered) == 0 {
		return "", nil, ErrNoFilteredData
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return "", nil, err
	}
	for _, lead := range filtered {
		record := []string{
			lead.Name,
			lead.Email,
			lead.Phone,
			string(lead.Status),
			lead.AssignedTo,
			lead.CreatedAt.Format(exportTimeLayout),
			lead.UpdatedAt.Format(exportTimeLayout),
		}
		if err := w.Write(record); err != nil {
			return "", nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	filename = "leads-export-" + now.Format(exportNameTimeOnly) + ".csv"
	return filename, buf.Bytes(), nil
}

func filterLeads(leads []entity.Lead, opts ExportOptions, now time.Time) []entity.Lead {
	filtered := leads

	if len(opts.Statuses) > 0 {
		wanted := make(map[entity.LeadStatus]bool, len(opts.Statuses))
		for _, s := range opts.Statuses {
			wanted[s] = true
		}
		var byStatus []entity.Lead
		for _, lead := range filtered {
			if wanted[lead.Status] {
				byStatus = append(byStatus, lead)
			}
		}
		filtered = byStatus
	}

	if opts.DateRange != "" && opts.DateRange != RangeAll {
		var cutoff time.Time
		switch opts.DateRange {
		case RangeThisMonth:
			cutoff = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		case RangeLastMonth:
			cutoff = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		case RangeThisYear:
			cutoff = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		default:
			return filtered
		}
		var byDate []entity.Lead
		for _, lead := range filtered {
			if !lead.CreatedAt.Before(cutoff) {
				byDate = append(byDate, lead)
			}
		}
		filtered = byDate
	}

	return filtered
}
