// Package excel exporta el libro de movimientos a XLSX con excelize.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/stock"
)

// ContentTypeXLSX tipo MIME de un libro Excel.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Movimientos"

var headers = []string{
	"Fecha", "Código", "Artículo", "Acción", "Cantidad", "Motivo",
	"Orden de trabajo", "Realizado por", "Revertido", "Revertido por", "Reversa de",
}

var _ stock.MovementExporter = (*MovementExporter)(nil)

// MovementExporter escribe movimientos en una hoja "Movimientos".
type MovementExporter struct{}

// NewMovementExporter construye el exportador.
func NewMovementExporter() *MovementExporter { return &MovementExporter{} }

// ContentType implementa stock.MovementExporter.
func (*MovementExporter) ContentType() string { return ContentTypeXLSX }

// WriteMovements genera el libro y lo escribe en w.
func (*MovementExporter) WriteMovements(w io.Writer, rows []dto.StockMovementResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("crear hoja: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("estilo de encabezado: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, m := range rows {
		qty, _ := m.Quantity.Float64()
		reversed := ""
		if m.ReversedAt != nil {
			reversed = m.ReversedAt.Format("2006-01-02 15:04")
		}
		reversalOf := ""
		if m.ReversalOf != nil {
			reversalOf = *m.ReversalOf
		}
		values := []any{
			m.CreatedAt.Format("2006-01-02 15:04"), m.ItemCode, m.ItemName, m.Action, qty, m.Reason,
			m.WorkOrderNo, m.PerformedBy, reversed, m.ReversedBy, reversalOf,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("fila %d: %w", r+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.Write(w)
}
