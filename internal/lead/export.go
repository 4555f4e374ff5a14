package lead

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
)

var exportHeader = []string{
	"Company", "Website", "Postcode", "Sector", "Size",
	"Contact", "Email", "Phone", "Score", "Project Value (GBP)",
	"Timeline", "Distance (mi)", "Status", "Sources",
}

// ExportXLSX writes the leads matching filter to an XLSX workbook at path.
// Returns the number of rows written.
func (m *Manager) ExportXLSX(ctx context.Context, filter store.LeadFilter, path string) (int, error) {
	leads, err := m.store.ListLeads(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "lead: list for export")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return 0, eris.Wrap(err, "lead: add export sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		addExportRow(sheet, l)
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrap(err, "lead: save export")
	}

	zap.L().Info("leads exported",
		zap.String("path", path),
		zap.Int("rows", len(leads)))
	return len(leads), nil
}

func addExportRow(sheet *xlsx.Sheet, l model.Lead) {
	row := sheet.AddRow()
	row.AddCell().SetString(l.CompanyName)
	row.AddCell().SetString(l.Website)
	row.AddCell().SetString(l.Postcode)
	row.AddCell().SetString(l.Sector)
	row.AddCell().SetString(l.CompanySize)
	row.AddCell().SetString(l.ContactName)
	row.AddCell().SetString(l.ContactEmail)
	row.AddCell().SetString(l.ContactPhone)
	row.AddCell().SetFloat(l.LeadScore)

	if l.ProjectValueGBP != nil {
		row.AddCell().SetFloat(*l.ProjectValueGBP)
	} else {
		row.AddCell().SetString("")
	}

	row.AddCell().SetString(l.Timeline)

	if l.DistanceMiles != nil {
		row.AddCell().SetFloatWithFormat(*l.DistanceMiles, "0.0")
	} else {
		row.AddCell().SetString("")
	}

	row.AddCell().SetString(string(l.Status))
	row.AddCell().SetString(strings.Join(l.SourceURLs, ", "))
}
