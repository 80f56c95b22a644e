package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"elc/infras/otel"
	"elc/infras/postgres"
	"elc/internal/domains/user/model"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gRepo "elc/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func EmailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldEmail, Operator: gDto.FilterOperatorEq, Value: email, Table: model.TableName},
		},
	}
}

// FacultyEmployeeFilter matches faculty members holding employeeID, leaving
// out excludeID when it is set.
func FacultyEmployeeFilter(employeeID, excludeID string) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldEmployeeID, Operator: gDto.FilterOperatorEq, Value: employeeID, Table: model.TableName},
			gDto.Filter{Field: model.FieldRole, Operator: gDto.FilterOperatorEq, Value: constant.RoleFaculty, Table: model.TableName},
		},
	}

	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters,
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorNotEq, Value: excludeID, Table: model.TableName})
	}

	return filter
}
