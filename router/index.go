package router

import (
	"event_hub/constants"
	"event_hub/handler"
	"event_hub/helper"
	"event_hub/middleware"
	"event_hub/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// NewApp builds the fiber application with its middleware stack and routes.
func NewApp(h *handler.Handler, tokens *helper.TokenManager, corsOrigin string, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "EventHub",
		BodyLimit: 12 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigin,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
		ExposeHeaders:    "Authorization",
	}))

	SetupRoutes(app, h, tokens)
	return app
}

func SetupRoutes(app *fiber.App, h *handler.Handler, tokens *helper.TokenManager) {
	app.Get("/", handler.Root)

	api := app.Group("/api")
	protected := middleware.Protected(tokens)

	auth := api.Group("/auth")
	auth.Post("/register", validate.Register(), h.Register)
	auth.Post("/login", validate.Login(), h.Login)
	auth.Get("/me", protected, h.Me)

	events := api.Group("/events")
	eventId := validate.GetById("id", constants.EVENT_NOT_FOUND)
	events.Get("/", h.GetEvents)
	events.Post("/", protected, validate.CreateEvent(), h.CreateEvent)
	events.Get("/slug/:slug", h.GetEventBySlug)
	events.Get("/:id/ws", eventId, handler.RequireUpgrade, websocket.New(h.SeatWebsocket))
	events.Get("/:id", eventId, h.GetEvent)
	events.Put("/:id", protected, eventId, validate.UpdateEvent(), h.UpdateEvent)
	events.Delete("/:id", protected, eventId, h.DeleteEvent)

	bookings := api.Group("/bookings")
	bookingId := validate.GetById("id", constants.BOOKING_NOT_FOUND)
	bookings.Post("/", protected, validate.CreateBooking(), h.CreateBooking)
	bookings.Get("/my", protected, h.GetMyBookings)
	bookings.Get("/:id/qrcode", protected, bookingId, h.GetBookingQRCode)
	bookings.Delete("/:id", protected, bookingId, h.CancelBooking)

	uploads := api.Group("/uploads")
	uploads.Post("/image", protected, h.UploadImage)
}
