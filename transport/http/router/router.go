package router

import (
	"elc/config"
	_ "elc/docs" // registers the swagger document
	"elc/internal/handlers/attendance"
	"elc/internal/handlers/auth"
	"elc/internal/handlers/booking"
	"elc/internal/handlers/resource"
	"elc/internal/handlers/room"
	"elc/internal/handlers/user"
	"elc/shared/constant"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Auth       auth.Handler
	User       user.Handler
	Room       room.Handler
	Booking    booking.Handler
	Attendance attendance.Handler
	Resource   resource.Handler
}

type Router struct {
	Config         *config.Config
	DomainHandlers DomainHandlers
}

// SetupRoutes mounts the versioned API. API docs are not served in production.
func (r *Router) SetupRoutes(router chi.Router) {
	if r.Config.Server.Env != constant.ServerEnvProduction {
		router.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Attendance.Router(routerGroup)
		r.DomainHandlers.Resource.Router(routerGroup)
	})
}

func New(cfg *config.Config, domainHandlers DomainHandlers) Router {
	return Router{
		Config:         cfg,
		DomainHandlers: domainHandlers,
	}
}
