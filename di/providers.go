package di

import (
	"elc/config"
	"elc/infras/kafka"
	"elc/infras/otel"
	attendanceService "elc/internal/domains/attendance/service"
	"elc/internal/events"
)

// provideBookingConsumer subscribes the attendance service to booking events.
func provideBookingConsumer(cfg *config.Config, client kafka.Client, otel otel.Otel, attendance attendanceService.Attendance) *events.Consumer {
	return events.NewConsumer(cfg, client, otel, attendance)
}
