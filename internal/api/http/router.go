package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Rooms          *handlers.RoomsHandler
	Menu           *handlers.MenuHandler
	Bookings       *handlers.BookingsHandler
	Orders         *handlers.OrdersHandler
	Tasks          *handlers.TasksHandler
	Chat           *handlers.ChatHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	limited := cfg.Limiter.Handle
	authn := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", limited, cfg.Users.Register)
	authGroup.Post("/users/login", limited, cfg.Users.Login)
	authGroup.Post("/staff/login", limited, cfg.Staff.Login)
	authGroup.Post("/password/reset/request", limited, cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", limited, cfg.Staff.ConfirmPasswordReset)
	authGroup.Post("/password/change", authn, auth.RequireAnyRole(), cfg.Staff.ChangePassword)

	app.Get("/rooms", cfg.Rooms.List)
	app.Get("/rooms/:id", cfg.Rooms.Get)
	app.Get("/menu", cfg.Menu.List)

	// Guest and chat routes share the /bookings prefix, so their guards are
	// attached per route rather than through a group.
	guest := []fiber.Handler{authn, auth.RequireUser()}
	anyone := []fiber.Handler{authn, auth.RequireAnyRole()}

	app.Post("/bookings", with(guest, cfg.Bookings.Create)...)
	app.Get("/bookings", with(guest, cfg.Bookings.ListMine)...)
	app.Post("/bookings/:id/cancel", with(guest, cfg.Bookings.Cancel)...)
	app.Get("/bookings/:id/voucher.pdf", with(guest, cfg.Bookings.Voucher)...)
	app.Get("/bookings/:id/messages", with(anyone, cfg.Chat.List)...)
	app.Post("/bookings/:id/messages", with(anyone, cfg.Chat.Post)...)

	app.Post("/orders", with(guest, limited, cfg.Orders.Place)...)
	app.Get("/orders", with(guest, cfg.Orders.List)...)
	app.Post("/orders/:id/cancel", with(guest, cfg.Orders.Cancel)...)

	staff := app.Group("/staff", authn, auth.RequireStaffRole())
	staff.Get("/tasks", cfg.Tasks.ListMine)
	staff.Post("/tasks/:id/complete", cfg.Tasks.Complete)

	admin := app.Group("/admin", authn, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/staff", cfg.Staff.CreateStaff)
	admin.Get("/staff", cfg.Staff.ListStaff)
	admin.Get("/staff/:id", cfg.Staff.GetStaff)
	admin.Put("/staff/:id", cfg.Staff.UpdateStaff)

	admin.Post("/rooms", cfg.Rooms.Create)
	admin.Put("/rooms/:id", cfg.Rooms.Update)
	admin.Delete("/rooms/:id", cfg.Rooms.Delete)
	admin.Post("/rooms/:id/images", cfg.Rooms.UploadImage)
	admin.Delete("/rooms/:id/images/:imageId", cfg.Rooms.DeleteImage)

	admin.Get("/menu", cfg.Menu.AdminList)
	admin.Post("/menu", cfg.Menu.Create)
	admin.Put("/menu/:id", cfg.Menu.Update)

	admin.Get("/bookings", cfg.Bookings.AdminList)
	admin.Post("/bookings/:id/confirm", cfg.Bookings.Confirm)
	admin.Post("/bookings/:id/check-out", cfg.Bookings.CheckOut)

	admin.Post("/tasks", cfg.Tasks.Create)
	admin.Post("/tasks/schedule", cfg.Tasks.Schedule)
	admin.Get("/tasks", cfg.Tasks.List)
	admin.Get("/tasks/:id/history", cfg.Tasks.History)
	admin.Get("/reports/tasks.pdf", cfg.Tasks.Report)

	admin.Get("/notifications", cfg.Notifications.List)
}

func with(chain []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+len(handlers))
	out = append(out, chain...)
	return append(out, handlers...)
}
