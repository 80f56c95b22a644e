//go:build wireinject
// +build wireinject

package di

import (
	"elc/config"
	"elc/infras/jwt"
	"elc/infras/kafka"
	"elc/infras/otel"
	"elc/infras/postgres"
	"elc/infras/redis"
	"elc/infras/s3"
	"elc/internal/domains/attendance/qr"
	"elc/internal/events"
	"elc/permissions"
	"elc/shared/cache"
	"elc/shared/clock"
	"elc/shared/ratelimit"
	"elc/transport/http"
	"elc/transport/http/middleware"
	"elc/transport/http/router"

	"github.com/google/wire"

	attendanceRepository "elc/internal/domains/attendance/repository"
	attendanceService "elc/internal/domains/attendance/service"
	authService "elc/internal/domains/auth/service"
	bookingRepository "elc/internal/domains/booking/repository"
	bookingService "elc/internal/domains/booking/service"
	resourceRepository "elc/internal/domains/resource/repository"
	resourceService "elc/internal/domains/resource/service"
	roomRepository "elc/internal/domains/room/repository"
	roomService "elc/internal/domains/room/service"
	userRepository "elc/internal/domains/user/repository"
	userService "elc/internal/domains/user/service"

	attendanceHandler "elc/internal/handlers/attendance"
	authHandler "elc/internal/handlers/auth"
	bookingHandler "elc/internal/handlers/booking"
	resourceHandler "elc/internal/handlers/resource"
	roomHandler "elc/internal/handlers/room"
	userHandler "elc/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
	ratelimit.New,
)

var eventing = wire.NewSet(
	events.NewPublisher,
	provideBookingConsumer,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var attendanceDomain = wire.NewSet(
	attendanceRepository.New,
	attendanceService.New,
	qr.NewPolicy,
	qr.NewCodec,
)

var resourceDomain = wire.NewSet(
	resourceRepository.New,
	resourceService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	roomDomain,
	bookingDomain,
	attendanceDomain,
	resourceDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	bookingHandler.New,
	attendanceHandler.New,
	resourceHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, func()) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		eventing,
		domains,
		routing,
		http.New,
	)

	return nil, nil
}
