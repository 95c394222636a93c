package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factory-api/internal/application/analytics"
	"github.com/jhoicas/factory-api/internal/application/auth"
	"github.com/jhoicas/factory-api/internal/application/stock"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	WorkOrderUC *workorder.LifecycleUseCase
	RouteSheet  *workorder.RouteSheetUseCase // opcional
	LedgerUC    *stock.LedgerUseCase
	DashboardUC *analytics.DashboardUseCase
	JWTSecret   string
	Log         *logger.Logger
	Validator   *Validator // nil → NewValidator()
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	val := deps.Validator
	if val == nil {
		val = NewValidator()
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, val, log.Component("auth"))
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleManager, entity.RoleAdmin)

	// Users (solo admin)
	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.RegisterUser)

	// Work orders: el rol de cada etapa lo valida el caso de uso
	wo := protected.Group("/work-orders")
	woHandler := NewWorkOrderHandler(deps.WorkOrderUC, deps.RouteSheet, val, log.Component("work_orders"))
	wo.Get("/", woHandler.List)
	wo.Post("/", managers, woHandler.Create)
	wo.Get("/:id", woHandler.GetByID)
	if deps.RouteSheet != nil {
		wo.Get("/:id/route-sheet", woHandler.RouteSheet)
	}
	wo.Post("/:id/stages/:stage", woHandler.CompleteStage)
	wo.Post("/:id/quality/accept", managers, woHandler.AcceptQuality)
	wo.Post("/:id/quality/reject", managers, woHandler.RejectQuality)

	// Stock ledger
	st := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC, val, log.Component("stock"))
	st.Get("/items", stockHandler.ListItems)
	st.Post("/items", managers, stockHandler.CreateItem)
	st.Get("/items/:id", stockHandler.GetItem)
	st.Post("/items/:id/issue", stockHandler.Issue)
	st.Post("/items/:id/add", managers, stockHandler.Add)
	st.Post("/items/:id/adjust", managers, stockHandler.Adjust)
	st.Get("/movements", stockHandler.ListMovements)
	st.Get("/movements/export", stockHandler.ExportMovements)
	st.Post("/movements/:id/reverse", managers, stockHandler.ReverseMovement)

	// Dashboard (solo lectura)
	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC, log.Component("dashboard"))
		protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
	}
}
