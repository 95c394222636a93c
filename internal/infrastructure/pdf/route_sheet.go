// Package pdf genera la hoja de ruta imprimible de una orden de trabajo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Orden + Herramienta  │  Estado + Fecha          │
//	│  DATOS: Cantidad / KORV / Marcado / Recubrimiento           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Etapa | Completado | Por | Nota                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CALIDAD: resultado, cantidades, responsable                │
//	│  FOOTER: QR con el ID de la orden                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/workorder"
)

// ContentTypePDF tipo MIME de la hoja de ruta.
const ContentTypePDF = "application/pdf"

var _ workorder.RouteSheetRenderer = (*RouteSheetGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDone    = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// RouteSheetGenerator implementa workorder.RouteSheetRenderer usando Maroto v2.
type RouteSheetGenerator struct{}

// NewRouteSheetGenerator construye el generador.
func NewRouteSheetGenerator() *RouteSheetGenerator { return &RouteSheetGenerator{} }

// ContentType tipo MIME del documento generado.
func (*RouteSheetGenerator) ContentType() string { return ContentTypePDF }

// RenderRouteSheet genera el PDF y devuelve sus bytes.
func (g *RouteSheetGenerator) RenderRouteSheet(_ context.Context, wo *dto.WorkOrderResponse, printedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de ruta "+wo.WorkOrderNo, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(wo, printedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailsRow(wo))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(stageHeaderRow())
	m.AddRows(stageRows(wo.Stages)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(qualityRows(wo)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(wo))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar hoja de ruta: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: número de orden y herramienta (izq), estado y fecha de impresión (der).
func headerRow(wo *dto.WorkOrderResponse, printedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ORDEN "+wo.WorkOrderNo, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Herramienta: "+wo.ToolRef, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("HOJA DE RUTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(wo.Status, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Impreso: "+printedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func detailsRow(wo *dto.WorkOrderResponse) core.Row {
	extra := ""
	if wo.ParentID != "" {
		extra = "   |   Re-proceso de una orden rechazada"
	}
	if wo.ReplanRequired {
		extra += "   |   REQUIERE REPLANIFICAR"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DE LA ORDEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Cantidad: %s   |   KORV: %s   |   Marcado: %s   |   Recubrimiento: %s%s",
				wo.Quantity.String(), wo.Korv.String(),
				yesNo(wo.MarkingRequired), yesNo(wo.CoatingRequired), extra,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// stageHeaderRow: cabecera de la tabla de etapas.
func stageHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Etapa", 4, align.Left),
		h("Completado", 3, align.Center),
		h("Por", 2, align.Left),
		h("Nota", 3, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// stageRows: una fila por etapa aplicable; la siguiente pendiente se resalta.
func stageRows(stages []dto.StageMarkResponse) []core.Row {
	out := make([]core.Row, 0, len(stages))
	for _, s := range stages {
		when, color := "pendiente", colorGray
		if s.Completed && s.At != nil {
			when, color = s.At.Format("02/01/2006 15:04"), colorDone
		}
		label := s.Label
		if s.Next {
			label = "» " + label
		}
		out = append(out, row.New(7).Add(
			col.New(4).Add(text.New(label, props.Text{Size: 8, Top: 1, Left: 1, Style: styleFor(s.Next)})),
			col.New(3).Add(text.New(when, props.Text{Size: 8, Top: 1, Align: align.Center, Color: color})),
			col.New(2).Add(text.New(nonEmpty(s.By, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(s.Note, props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return out
}

// qualityRows: resultado de la inspección de calidad.
func qualityRows(wo *dto.WorkOrderResponse) []core.Row {
	q := wo.Quality
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CALIDAD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	var detail string
	switch {
	case q.Outcome == "":
		detail = "Sin inspección"
	case q.RejectedAt != nil:
		qty := "total"
		if q.RejectedQty != nil {
			qty = q.RejectedQty.String()
		}
		detail = fmt.Sprintf("Rechazada (%s) por %s el %s", qty, nonEmpty(q.RejectedBy, "—"), q.RejectedAt.Format("02/01/2006"))
	case q.AcceptedAt != nil:
		qty := wo.Quantity.String()
		if q.PartialQty != nil {
			qty = q.PartialQty.String() + " de " + wo.Quantity.String()
		}
		detail = fmt.Sprintf("Aceptada (%s) por %s el %s", qty, nonEmpty(q.AcceptedBy, "—"), q.AcceptedAt.Format("02/01/2006"))
	default:
		detail = q.Outcome
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(detail, props.Text{Size: 8, Top: 1, Left: 2}),
	)))
	if q.Note != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Nota: "+q.Note, props.Text{Size: 7, Top: 1, Left: 2, Color: colorGray}),
		)))
	}
	return rows
}

// footerRow: QR con el ID para escanear la orden en planta.
func footerRow(wo *dto.WorkOrderResponse) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(wo.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código para abrir la orden en el tablero.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(wo.ID, props.Text{Size: 7, Top: 12, Left: 3, Color: colorGray}),
		),
	)
}

func styleFor(next bool) fontstyle.Type {
	if next {
		return fontstyle.Bold
	}
	return fontstyle.Normal
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
