// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"freight-match-api-server/config"
	"freight-match-api-server/internal/api/handlers"
	"freight-match-api-server/internal/api/middleware"
	"freight-match-api-server/internal/cache"
	"freight-match-api-server/internal/directory"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/notifier"
	"freight-match-api-server/internal/s3"
	"freight-match-api-server/internal/schedule"
	"freight-match-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires every endpoint. Route groups are gated by role: loads
// belong to shippers, bids and the fleet to carriers, shipment progress to
// drivers, tracking reads to all three.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	hub *socket.Hub,
	sched *schedule.Store,
	locCache *cache.Locations,
	uploader *s3.Uploader,
	notif *notifier.Notifier,
	jwtExpiration time.Duration,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	jwtSecret := []byte(cfg.JWT.Secret)

	userHandler := &handlers.UserHandler{
		DB:            db,
		Directory:     &directory.Directory{DB: db},
		Notifier:      notif,
		JWTSecret:     jwtSecret,
		JWTExpiration: jwtExpiration,
	}
	loadHandler := &handlers.LoadHandler{DB: db, Schedule: sched, Hub: hub}
	bidHandler := &handlers.BidHandler{DB: db, Schedule: sched, Hub: hub}
	shipmentHandler := &handlers.ShipmentHandler{DB: db, Schedule: sched, Hub: hub}
	trackingHandler := &handlers.TrackingHandler{DB: db, Cache: locCache, Hub: hub}
	truckHandler := &handlers.TruckHandler{DB: db, Uploader: uploader}
	driverHandler := &handlers.DriverHandler{DB: db}
	wsHandler := &handlers.WebSocketHandler{DB: db, Cache: locCache, Hub: hub, JWTSecret: jwtSecret}

	v1 := router.Group("/api/v1")

	v1.GET("/ws/tracking", wsHandler.HandleTracking)

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.POST("/forgot-password", userHandler.ForgotPassword)
		authRoutes.POST("/reset-password", userHandler.ResetPassword)
	}

	authed := v1.Group("")
	authed.Use(middleware.Authenticate(jwtSecret))
	{
		authed.GET("/auth/me", userHandler.GetMe)
	}

	shipperRoutes := v1.Group("/loads")
	shipperRoutes.Use(middleware.Authenticate(jwtSecret))
	{
		// The public board is readable by carriers looking for work.
		shipperRoutes.GET("/public", middleware.Authorize(models.RoleCarrier, models.RoleAdmin), loadHandler.GetPublicLoads)

		shipperOnly := shipperRoutes.Group("")
		shipperOnly.Use(middleware.Authorize(models.RoleShipper))
		{
			shipperOnly.POST("", loadHandler.CreateLoad)
			shipperOnly.GET("", loadHandler.GetMyLoads)
			shipperOnly.PATCH("/:id", loadHandler.UpdateLoad)
			shipperOnly.DELETE("/:id", loadHandler.DeleteLoad)
			shipperOnly.POST("/:id/publish", loadHandler.PublishLoad)
			shipperOnly.POST("/:id/cancel", loadHandler.CancelLoad)
			shipperOnly.GET("/:id/bids", loadHandler.GetLoadBids)
			shipperOnly.POST("/:id/accept-bid/:bidId", loadHandler.AcceptBid)
		}

		shipperRoutes.GET("/:id", middleware.Authorize(models.RoleShipper, models.RoleCarrier, models.RoleAdmin), loadHandler.GetLoad)
	}

	bidRoutes := v1.Group("/bids")
	bidRoutes.Use(middleware.Authenticate(jwtSecret))
	{
		bidRoutes.GET("", middleware.Authorize(models.RoleShipper), bidHandler.GetBidsForLoad)
		bidRoutes.POST("/accept", middleware.Authorize(models.RoleShipper), bidHandler.AcceptBid)

		carrierBids := bidRoutes.Group("")
		carrierBids.Use(middleware.Authorize(models.RoleCarrier))
		{
			carrierBids.POST("", bidHandler.CreateBid)
			carrierBids.GET("/carrier", bidHandler.GetCarrierBids)
			carrierBids.PATCH("/:id", bidHandler.UpdateBid)
			carrierBids.PATCH("/:id/cancel", bidHandler.CancelBid)
		}
	}

	shipmentRoutes := v1.Group("/shipments")
	shipmentRoutes.Use(middleware.Authenticate(jwtSecret))
	{
		shipmentRoutes.GET("", middleware.Authorize(models.RoleShipper), shipmentHandler.GetShipperShipments)
		shipmentRoutes.GET("/carrier", middleware.Authorize(models.RoleCarrier), shipmentHandler.GetCarrierShipments)
		shipmentRoutes.GET("/driver", middleware.Authorize(models.RoleDriver), shipmentHandler.GetDriverShipments)
		shipmentRoutes.PATCH("/:id/assign-driver", middleware.Authorize(models.RoleCarrier), shipmentHandler.AssignDriver)
		shipmentRoutes.PATCH("/:id/start", middleware.Authorize(models.RoleDriver), shipmentHandler.StartShipment)
		shipmentRoutes.PATCH("/:id/deliver", middleware.Authorize(models.RoleDriver), shipmentHandler.DeliverShipment)
		shipmentRoutes.PATCH("/:id/cancel", middleware.Authorize(models.RoleCarrier), shipmentHandler.CancelShipment)
	}

	trackingRoutes := v1.Group("/tracking")
	trackingRoutes.Use(middleware.Authenticate(jwtSecret))
	{
		reads := trackingRoutes.Group("")
		reads.Use(middleware.Authorize(models.RoleShipper, models.RoleCarrier, models.RoleDriver))
		{
			reads.GET("/:shipmentId", trackingHandler.GetTrackingInfo)
			reads.GET("/:shipmentId/history", trackingHandler.GetLocationHistory)
		}
		trackingRoutes.POST("/:shipmentId/location", middleware.Authorize(models.RoleDriver), trackingHandler.UpdateLocation)
	}

	fleetRoutes := v1.Group("/trucks")
	fleetRoutes.Use(middleware.Authenticate(jwtSecret), middleware.Authorize(models.RoleCarrier))
	{
		fleetRoutes.POST("", truckHandler.CreateTruck)
		fleetRoutes.GET("", truckHandler.GetMyTrucks)
		fleetRoutes.GET("/:id", truckHandler.GetTruck)
		fleetRoutes.PUT("/:id", truckHandler.UpdateTruck)
		fleetRoutes.POST("/:id/photos", truckHandler.UploadPhoto)
	}

	driverRoutes := v1.Group("/drivers")
	driverRoutes.Use(middleware.Authenticate(jwtSecret), middleware.Authorize(models.RoleCarrier))
	{
		driverRoutes.POST("", driverHandler.CreateDriver)
		driverRoutes.GET("", driverHandler.GetMyDrivers)
		driverRoutes.GET("/:id", driverHandler.GetDriver)
		driverRoutes.PUT("/:id", driverHandler.UpdateDriver)
	}

	return router
}
