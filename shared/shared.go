package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"elc/shared/cache"
	"elc/shared/constant"
	"elc/shared/dto"
	"elc/shared/timezone"

	"github.com/rs/zerolog/log"
)

const queryHashLength = 16

// ParseBool reads an optional boolean query or form value. Empty or malformed
// input yields nil.
func ParseBool(value string) *bool {
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Debug().Str("value", value).Msg("ignoring malformed boolean")

		return nil
	}

	return &parsed
}

func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return int(math.Ceil(float64(total) / float64(limit)))
}

// ChangedColumns maps the non-zero, db-tagged fields of a request struct to
// their column names and stamps the modification metadata.
func ChangedColumns(data any, actor string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	columns := make(map[string]any, typ.NumField()+2)

	for idx := range typ.NumField() {
		column, _, _ := strings.Cut(typ.Field(idx).Tag.Get("db"), ",")
		if column == "" || column == "-" {
			continue
		}

		if field := val.Field(idx); !field.IsZero() {
			columns[column] = field.Interface()
		}
	}

	columns[constant.FieldModifiedAt] = timezone.Now()
	columns[constant.FieldModifiedBy] = actor

	return columns
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins the prefix and parts with the cache key separator.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), constant.CacheKeySep)
}

// BuildCacheKeyWithQuery derives a stable key for a paginated, filtered listing.
// Filter arguments are sorted before hashing so equal queries share one key.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	slices.Sort(names)

	var builder strings.Builder

	builder.WriteString(where)

	for _, name := range names {
		fmt.Fprintf(&builder, "|%s=%v", name, args[name])
	}

	sum := sha256.Sum256([]byte(builder.String()))

	return BuildCacheKey(
		prefix,
		strconv.Itoa(params.Page),
		strconv.Itoa(params.Limit),
		params.SortBy,
		params.SortDir,
		hex.EncodeToString(sum[:])[:queryHashLength],
	)
}

// InvalidateCaches removes every key under prefix. Failures are logged only.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	pattern := prefix + constant.CacheWildcard

	if err := redisCache.Clear(ctx, pattern); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
