package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/handler"
	"fleetflow/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler     *handler.VehicleHandler
	DriverHandler      *handler.DriverHandler
	TripHandler        *handler.TripHandler
	MaintenanceHandler *handler.MaintenanceHandler
	ExpenseHandler     *handler.ExpenseHandler
	DashboardHandler   *handler.DashboardHandler
	IdempotencyStore   middleware.IdempotencyStore
	NewRelicApp        *newrelic.Application
	CORSOrigins        []string
	Log                logrus.FieldLogger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.CORS(deps.CORSOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	router.Use(middleware.Idempotency(deps.IdempotencyStore, deps.Log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/dashboard", deps.DashboardHandler.Summary)
		v1.GET("/license-categories", deps.DriverHandler.LicenseCategories)

		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.Create)
			vehicles.GET("", deps.VehicleHandler.GetAll)
			vehicles.GET("/:id", deps.VehicleHandler.Get)
			vehicles.PATCH("/:id", deps.VehicleHandler.Update)
			vehicles.DELETE("/:id", deps.VehicleHandler.Delete)
			vehicles.POST("/:id/available", deps.VehicleHandler.SetAvailable)
			vehicles.POST("/:id/retire", deps.VehicleHandler.Retire)
			vehicles.GET("/:id/trips", deps.VehicleHandler.Trips)
			vehicles.GET("/:id/maintenance", deps.VehicleHandler.Maintenance)
			vehicles.GET("/:id/expenses", deps.VehicleHandler.Expenses)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Create)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.PATCH("/:id", deps.DriverHandler.Update)
			drivers.DELETE("/:id", deps.DriverHandler.Delete)
			drivers.POST("/:id/on-duty", deps.DriverHandler.SetOnDuty)
			drivers.POST("/:id/off-duty", deps.DriverHandler.SetOffDuty)
			drivers.POST("/:id/suspend", deps.DriverHandler.Suspend)
			drivers.GET("/:id/trips", deps.DriverHandler.Trips)
		}

		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.PATCH("/:id", deps.TripHandler.Update)
			trips.DELETE("/:id", deps.TripHandler.Delete)
			trips.POST("/:id/dispatch", deps.TripHandler.Dispatch)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.POST("/:id/reset", deps.TripHandler.Reset)
		}

		maintenance := v1.Group("/maintenance")
		{
			maintenance.POST("", deps.MaintenanceHandler.Create)
			maintenance.GET("", deps.MaintenanceHandler.GetAll)
			maintenance.GET("/:id", deps.MaintenanceHandler.Get)
			maintenance.PATCH("/:id", deps.MaintenanceHandler.Update)
			maintenance.DELETE("/:id", deps.MaintenanceHandler.Delete)
			maintenance.POST("/:id/complete", deps.MaintenanceHandler.Complete)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", deps.ExpenseHandler.Create)
			expenses.GET("", deps.ExpenseHandler.GetAll)
			expenses.GET("/:id", deps.ExpenseHandler.Get)
			expenses.PATCH("/:id", deps.ExpenseHandler.Update)
			expenses.DELETE("/:id", deps.ExpenseHandler.Delete)
		}
	}

	return router
}
