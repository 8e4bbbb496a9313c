package envelope

import (
	"encoding/base64"
	"time"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

// Page size bounds shared by both pagination flavors.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 20
)

// ClampLimit forces n into [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	return min(max(n, MinLimit), MaxLimit)
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func limitField() schema.Field {
	return schema.Optional("limit", schema.Int().Coerce().Clamp(MinLimit, MaxLimit)).Default(DefaultLimit)
}

// OffsetQuerySchema parses ?page=&limit= with limit clamped rather than
// rejected.
func OffsetQuerySchema() *schema.Object {
	return schema.DefineEntity("OffsetQuery",
		schema.Optional("page", schema.Int().Coerce().Min(1)).Default(1),
		limitField(),
	)
}

// CursorQuerySchema parses ?cursor=&limit=. The cursor is opaque to clients.
func CursorQuerySchema() *schema.Object {
	return schema.DefineEntity("CursorQuery",
		schema.Optional("cursor", schema.String().Min(1)),
		limitField(),
	)
}

// CursorPagination is the "pagination" member of a cursor page.
type CursorPagination struct {
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
	Limit      int     `json:"limit"`
}

// CursorPage is the data payload of a cursor page.
type CursorPage[T any] struct {
	Items      []T              `json:"items"`
	Pagination CursorPagination `json:"pagination"`
}

// WrapCursorPage builds a cursor page. has_more is derived from next so the
// two can never disagree. Items beyond the clamped limit are dropped; the
// caller's next cursor must already point at the last item kept.
func WrapCursorPage[T any](items []T, next *string, limit int, now time.Time) Envelope[CursorPage[T]] {
	limit = ClampLimit(limit)
	return WrapSuccess(CursorPage[T]{
		Items: capItems(items, limit),
		Pagination: CursorPagination{
			NextCursor: next,
			HasMore:    next != nil,
			Limit:      limit,
		},
	}, "", now)
}

func capItems[T any](items []T, limit int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > limit {
		return items[:limit:limit]
	}
	return items
}

// WrapOffsetPage builds an offset page with totalPages derived from total
// and limit.
func WrapOffsetPage[T any](items []T, total, page, limit int, now time.Time) Envelope[[]T] {
	if items == nil {
		items = []T{}
	}
	limit = ClampLimit(limit)
	env := WrapSuccess(items, "", now)
	env.Meta = &OffsetMeta{
		Total:      int64(total),
		Page:       int64(page),
		Limit:      int64(limit),
		TotalPages: TotalPages(int64(total), int64(limit)),
	}
	return env
}

// EncodeCursor makes an opaque cursor pointing after id. Only the server
// decodes it.
func EncodeCursor(id domain.ID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeCursor reverses EncodeCursor. Tampered cursors fail validation on
// the "cursor" query parameter.
func DecodeCursor(cursor string) (domain.ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return domain.ID{}, invalidCursor()
	}
	id, err := domain.ParseID(string(raw))
	if err != nil {
		return domain.ID{}, invalidCursor()
	}
	return id, nil
}

func invalidCursor() error {
	return dErrors.NewValidation([]dErrors.Issue{{Path: "query.cursor", Message: "is not a valid cursor"}})
}
