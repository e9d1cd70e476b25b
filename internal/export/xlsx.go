package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/scoring"
)

var xlsxHeader = []string{
	"Name", "City", "Province", "Address", "Phone", "WhatsApp", "Email",
	"Website", "Score", "Category", "Rating", "Reviews",
	"Analyzed", "Exported", "GMB URL",
}

// WriteXLSX writes leads to an Excel workbook at path.
func WriteXLSX(leads []model.Lead, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range xlsxHeader {
		header.AddCell().Value = col
	}

	for i := range leads {
		lead := &leads[i]
		row := sheet.AddRow()
		row.AddCell().Value = lead.Name
		row.AddCell().Value = lead.City
		row.AddCell().Value = lead.Province
		row.AddCell().Value = lead.Address
		row.AddCell().Value = lead.Phone
		row.AddCell().Value = lead.WhatsApp
		row.AddCell().Value = lead.Email
		row.AddCell().Value = lead.Website
		row.AddCell().SetInt(lead.OpportunityScore)
		row.AddCell().Value = string(scoring.Categorize(lead.OpportunityScore))
		row.AddCell().SetFloat(lead.Rating)
		row.AddCell().SetInt(lead.Reviews)
		row.AddCell().SetBool(lead.IsAnalyzed)
		row.AddCell().SetBool(lead.IsExported)
		row.AddCell().Value = lead.GMBURL
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save")
	}
	return nil
}
