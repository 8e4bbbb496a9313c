package envelope

import (
	"fmt"

	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

var errorBody = schema.Shape(
	schema.Required("code", schema.String().Min(1)),
	schema.Required("message", schema.String()),
	schema.Optional("details", schema.Any()).Nullable(),
)

// SuccessSchema is the success branch for a data schema. A nil data schema
// declares an operation without a payload; its data member may be null.
func SuccessSchema(data schema.Schema) *schema.Object {
	dataField := schema.Required("data", data)
	if data == nil {
		dataField = schema.Required("data", schema.Any()).Nullable()
	}
	return schema.DefineEntity("SuccessEnvelope",
		schema.Required("success", schema.Literal(true)),
		dataField,
		schema.Optional("message", schema.String()),
		schema.Required("timestamp", schema.Timestamp()),
	)
}

// ErrorSchema is the error branch.
func ErrorSchema() *schema.Object {
	return schema.DefineEntity("ErrorEnvelope",
		schema.Required("success", schema.Literal(false)),
		schema.Required("error", errorBody),
		schema.Required("timestamp", schema.Timestamp()),
	)
}

func pageLimit() *schema.IntSchema {
	return schema.Int().Min(MinLimit).Max(MaxLimit)
}

var offsetMeta = schema.Shape(
	schema.Required("total", schema.Int().Min(0)),
	schema.Required("page", schema.Int().Min(1)),
	schema.Required("limit", pageLimit()),
	schema.Required("totalPages", schema.Int().Min(0)),
).Refine(func(v map[string]any) []dErrors.Issue {
	total, _ := v["total"].(int64)
	limit, _ := v["limit"].(int64)
	pages, _ := v["totalPages"].(int64)
	if limit > 0 && pages != TotalPages(total, limit) {
		return []dErrors.Issue{{Path: "totalPages", Message: fmt.Sprintf("must equal ceil(total/limit) = %d", TotalPages(total, limit))}}
	}
	return nil
})

// OffsetPageSchema is the success branch of an offset-paginated list:
// data is the item array and meta carries the counts.
func OffsetPageSchema(item schema.Schema) *schema.Object {
	return SuccessSchema(schema.Array(item).Max(MaxLimit)).
		Extend(schema.Required("meta", offsetMeta)).
		Named("OffsetPageEnvelope")
}

var cursorPagination = schema.Shape(
	schema.Required("next_cursor", schema.String().Min(1)).Nullable(),
	schema.Required("has_more", schema.Bool()),
	schema.Required("limit", pageLimit()),
).Refine(func(v map[string]any) []dErrors.Issue {
	hasMore, _ := v["has_more"].(bool)
	if hasMore != (v["next_cursor"] != nil) {
		return []dErrors.Issue{{Path: "has_more", Message: "must be true exactly when next_cursor is set"}}
	}
	return nil
})

// CursorPageSchema is the success branch of a cursor-paginated list: data
// nests the items and the pagination state.
func CursorPageSchema(item schema.Schema) *schema.Object {
	data := schema.Shape(
		schema.Required("items", schema.Array(item)),
		schema.Required("pagination", cursorPagination),
	).Refine(func(v map[string]any) []dErrors.Issue {
		items, _ := v["items"].([]any)
		p, _ := v["pagination"].(map[string]any)
		limit, _ := p["limit"].(int64)
		if int64(len(items)) > limit {
			return []dErrors.Issue{{Path: "items", Message: fmt.Sprintf("must contain at most limit (%d) items", limit)}}
		}
		return nil
	})
	return SuccessSchema(data).Named("CursorPageEnvelope")
}
