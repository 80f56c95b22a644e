package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"elc/shared"
	cacheMocks "elc/shared/cache/mocks"
	"elc/shared/constant"
	"elc/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseBool(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		input    string
		expected *bool
	}{
		{input: "", expected: nil},
		{input: "true", expected: &yes},
		{input: "TRUE", expected: &yes},
		{input: "1", expected: &yes},
		{input: "f", expected: &no},
		{input: "0", expected: &no},
		{input: "yes", expected: nil},
		{input: "active", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ParseBool(tt.input))
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{total: 0, limit: 10, expected: 1},
		{total: 25, limit: 0, expected: 1},
		{total: 10, limit: 10, expected: 1},
		{total: 11, limit: 10, expected: 2},
		{total: 95, limit: 20, expected: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

type roomPatch struct {
	Name     string  `db:"name"`
	Floor    string  `db:"floor"`
	Capacity *int    `db:"capacity"`
	Active   *bool   `db:"active"`
	Notes    string  `db:"-"`
	Upload   []byte  // not a column
	Building *string `db:"building,omitempty"`
}

func TestChangedColumns(t *testing.T) {
	zero := 0
	inactive := false
	building := "Science"

	before := time.Now()
	columns := shared.ChangedColumns(roomPatch{
		Name:     "Hall B",
		Capacity: &zero,
		Active:   &inactive,
		Notes:    "ignored",
		Upload:   []byte("x"),
		Building: &building,
	}, "admin-1")

	assert.Equal(t, "Hall B", columns["name"])
	assert.Equal(t, &zero, columns["capacity"], "a pointer to zero is still a change")
	assert.Equal(t, &inactive, columns["active"])
	assert.Equal(t, &building, columns["building"])
	assert.NotContains(t, columns, "floor")
	assert.NotContains(t, columns, "-")
	assert.Equal(t, "admin-1", columns[constant.FieldModifiedBy])

	modifiedAt, ok := columns[constant.FieldModifiedAt].(time.Time)
	require.True(t, ok)
	assert.False(t, modifiedAt.Before(before.Truncate(time.Second)))

	onlyMeta := shared.ChangedColumns(&roomPatch{}, "admin-1")
	assert.Len(t, onlyMeta, 2)
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("room-1", "id", "rooms")
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(rooms.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "room-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "limiter:10.0.0.1:curl", shared.BuildCacheKey("limiter", "10.0.0.1", "curl"))
	assert.Equal(t, "room:gets", shared.BuildCacheKey("room:gets"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}

	roomFilter := func(roomID string) dto.FilterGroup {
		return dto.FilterGroup{
			Operator: dto.FilterGroupOperatorAnd,
			Filters: []any{
				dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: roomID, Table: "bookings"},
			},
		}
	}

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, roomFilter("room-1"))
	again := shared.BuildCacheKeyWithQuery("booking:gets", params, roomFilter("room-1"))
	other := shared.BuildCacheKeyWithQuery("booking:gets", params, roomFilter("room-2"))

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
	assert.True(t, strings.HasPrefix(first, "booking:gets:1:10:created_at:DESC:"))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().
		Clear(gomock.Any(), "booking:gets*").
		Return(nil)

	mockCache.EXPECT().
		Clear(gomock.Any(), "booking:count*").
		Return(errors.New("redis down"))

	shared.InvalidateCaches(context.Background(), mockCache, "booking:gets")
	shared.InvalidateCaches(context.Background(), mockCache, "booking:count")
}
