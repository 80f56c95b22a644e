package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"elc/infras/otel"
	"elc/infras/postgres"
	"elc/internal/domains/booking/model"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gRepo "elc/shared/repository"

	"github.com/jmoiron/sqlx"
)

// Guard inspects the blocking bookings of the candidate's room and date and
// returns an error to abort the insert.
type Guard func(existing []model.Booking) error

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	CreateIfFree(ctx context.Context, booking model.Booking, guard Guard) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// CreateIfFree inserts booking unless guard rejects the bookings that already
// block the same room and date. Checks for one room and date are serialized
// by a transaction scoped advisory lock, so two requests for the same slot
// cannot both pass the guard.
func (r *repositoryImpl) CreateIfFree(ctx context.Context, booking model.Booking, guard Guard) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CreateIfFree")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	lockKey := SlotLockKey(booking.RoomID, booking.BookingDate)
	scope.SetAttribute("booking.lock_key", lockKey)

	return gRepo.WithTx(ctx, r.db, func(sqltx *sqlx.Tx) error {
		if err := gRepo.AdvisoryXactLock(ctx, sqltx, lockKey); err != nil {
			return err
		}

		existing, err := r.GetAllTx(ctx, sqltx, gDto.QueryParams{}, SameSlotFilter(booking.RoomID, booking.BookingDate))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if err := guard(existing); err != nil {
			return err
		}

		return r.InsertTx(ctx, sqltx, booking) //nolint:wrapcheck
	})
}

// SlotLockKey names the serialization point for a room's day.
func SlotLockKey(roomID string, date time.Time) string {
	return roomID + constant.CacheKeySep + date.Format(constant.DayFormat)
}

// SameSlotFilter selects the blocking bookings of a room on a date.
func SameSlotFilter(roomID string, date time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRoomID,
				Operator: gDto.FilterOperatorEq,
				Value:    roomID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldBookingDate,
				Operator: gDto.FilterOperatorEq,
				Value:    date.Format(constant.DayFormat),
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    model.BlockingStatuses,
				Table:    model.TableName,
			},
		},
	}
}
