package content

import (
	"carehub/contracts/common"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

func slug() *schema.StringSchema {
	return schema.String().Min(1).Max(120).Tag("slug")
}

var PageSchema = common.Entity("Page",
	schema.Required("slug", slug()),
	schema.Required("title", schema.String().Tag("notblank").Max(200)),
	schema.Required("body", schema.String()),
	schema.Required("published", schema.Bool()).Default(false),
	schema.Optional("published_at", schema.Timestamp()).Nullable().ServerOwned(),
)

var (
	CreatePageSchema = PageSchema.CreateInput()
	UpdatePageSchema = PageSchema.UpdateInput()
)

var PageListQuery = envelope.CursorQuerySchema().Named("ListPagesQuery")
