package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vportela/leadcrm/internal/entity"
)

var exportNow = time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

func sampleLeads() []entity.Lead {
	created := exportNow.AddDate(0, 0, -1)
	return []entity.Lead{
		{
			ID: "l1", Name: "Jane Doe", Email: "jane@x.com", Phone: "555-0100",
			Status: entity.StatusWon, AssignedTo: "Alice",
			CreatedAt: created, UpdatedAt: exportNow,
		},
		{
			ID: "l2", Name: "Smith, John", Email: "john@y.org", Phone: "555-0200",
			Status: entity.StatusLost, AssignedTo: "Bob",
			CreatedAt: exportNow.AddDate(0, -3, 0), UpdatedAt: exportNow.AddDate(0, -3, 0),
		},
	}
}

func TestExportCSVRefusesEmptySet(t *testing.T) {
	_, _, err := ExportCSV(nil, ExportOptions{}, exportNow)
	assert.ErrorIs(t, err, ErrNoExportData)
}

func TestExportCSVRefusesWhenFiltersMatchNothing(t *testing.T) {
	_, _, err := ExportCSV(sampleLeads(), ExportOptions{
		Statuses: []entity.LeadStatus{entity.StatusContacted},
	}, exportNow)
	assert.ErrorIs(t, err, ErrNoFilteredData)
}

func TestExportCSVContent(t *testing.T) {
	filename, data, err := ExportCSV(sampleLeads(), ExportOptions{}, exportNow)

	assert.NoError(t, err)
	assert.Equal(t, "leads-export-2026-08-31.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,Phone,Status,Assigned To,Created At,Updated At", lines[0])
	assert.Contains(t, lines[1], "Jane Doe")
	// A field containing a comma must be quoted.
	assert.Contains(t, lines[2], `"Smith, John"`)
}

func TestExportCSVStatusFilter(t *testing.T) {
	_, data, err := ExportCSV(sampleLeads(), ExportOptions{
		Statuses: []entity.LeadStatus{entity.StatusWon},
	}, exportNow)

	assert.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe")
	assert.NotContains(t, string(data), "Smith")
}

func TestExportCSVDateRangeFilter(t *testing.T) {
	_, data, err := ExportCSV(sampleLeads(), ExportOptions{
		DateRange: RangeThisMonth,
	}, exportNow)

	assert.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe")
	assert.NotContains(t, string(data), "Smith")
}
