// Package export renders the journey log as an xlsx workbook.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/milldrew/journeylog/internal/model"
)

// WriteXLSX writes rows to path as a single "Journeys" worksheet with the
// fixed ten-column header.
func WriteXLSX(path string, rows []model.JourneyRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Journeys")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range model.RowHeaders {
		header.AddCell().SetString(h)
	}

	for _, row := range rows {
		r := sheet.AddRow()
		for _, col := range row.Columns() {
			r.AddCell().SetString(col)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
