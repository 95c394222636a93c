// Package analytics contiene los casos de uso del tablero de planta.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/lifecycle"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

const dashboardTopItems = 5 // número de artículos en el widget de consumo

// Estados que cuentan como orden abierta en el tablero.
var closedStatuses = map[string]bool{
	entity.StatusDispatched: true,
	entity.StatusRejected:   true,
}

// boardStatuses todos los estados que DeriveStatus puede devolver, en orden de tablero.
var boardStatuses = buildBoardStatuses()

func buildBoardStatuses() []string {
	out := []string{entity.StatusPlanningRequired}
	seen := map[string]bool{entity.StatusPlanningRequired: true}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, st := range lifecycle.Stages() {
		add(st.Label)
	}
	add(entity.StatusQualityDone)
	add(entity.StatusPartiallyAccepted)
	add(entity.StatusRejected)
	return out
}

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. CountWorkOrdersByStatus  → tablero
//  2. GetMovementTotals(hoy)   → Today
//  3. GetMovementTotals(mes)   → Month
//  4. GetTopIssuedItems(mes)   → TopIssuedItems
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type countsResult struct {
		counts map[string]int
		err    error
	}
	type totalsResult struct {
		totals repository.MovementTotals
		err    error
	}
	type topResult struct {
		items []repository.TopItemResult
		err   error
	}

	countsCh := make(chan countsResult, 1)
	todayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		c, err := uc.analyticsRepo.CountWorkOrdersByStatus(ctx)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetMovementTotals(ctx, todayStart, todayEnd)
		todayCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetMovementTotals(ctx, monthStart, todayEnd)
		monthCh <- totalsResult{t, err}
	}()
	go func() {
		items, err := uc.analyticsRepo.GetTopIssuedItems(ctx, monthStart, todayEnd, dashboardTopItems)
		topCh <- topResult{items, err}
	}()

	counts := <-countsCh
	today := <-todayCh
	month := <-monthCh
	top := <-topCh

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: órdenes por estado: %w", counts.err)
	}
	if today.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top artículos: %w", top.err)
	}

	byStatus := make(map[string]int, len(boardStatuses))
	for _, s := range boardStatuses {
		byStatus[s] = 0
	}
	open := 0
	for status, n := range counts.counts {
		byStatus[status] += n
		if !closedStatuses[status] {
			open += n
		}
	}

	items := make([]dto.TopItemDTO, 0, len(top.items))
	for _, it := range top.items {
		items = append(items, dto.TopItemDTO{
			StockItemID: it.StockItemID,
			Code:        it.Code,
			Name:        it.Name,
			Issued:      it.Issued,
			IssueCount:  it.IssueCount,
		})
	}

	return &dto.DashboardSummaryDTO{
		WorkOrdersByStatus: byStatus,
		OpenWorkOrders:     open,
		Today:              toTotalsDTO(today.totals),
		Month:              toTotalsDTO(month.totals),
		TopIssuedItems:     items,
		DateLabel:          monthLabel(now),
	}, nil
}

func toTotalsDTO(t repository.MovementTotals) dto.MovementTotalsDTO {
	return dto.MovementTotalsDTO{
		Issued:      t.Issued,
		Added:       t.Added,
		Adjustments: t.Adjustments,
		Movements:   t.Movements,
	}
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
