package envelope

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type named struct {
	Name string `json:"name"`
}

var namedSchema = schema.Shape(schema.Required("name", schema.String()))

func TestWrapSuccess_WireShape(t *testing.T) {
	b, err := json.Marshal(WrapSuccess(named{Name: "A"}, "created", fixedNow))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"name":"A"},"message":"created","timestamp":"2024-06-15T12:00:00Z"}`, string(b))

	b, err = json.Marshal(WrapError("NOT_FOUND", "resident not found", nil, fixedNow))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"NOT_FOUND","message":"resident not found"},"timestamp":"2024-06-15T12:00:00Z"}`, string(b))
}

// TestScenario_SuccessBranchResolution mirrors the canonical example: a
// success envelope passes the success schema, fails the error schema, and
// resolves to the success branch.
func TestScenario_SuccessBranchResolution(t *testing.T) {
	raw, err := json.Marshal(WrapSuccess(named{Name: "A"}, "", fixedNow))
	require.NoError(t, err)

	_, err = SuccessSchema(namedSchema).ValidateJSON(raw)
	require.NoError(t, err)

	_, err = ErrorSchema().ValidateJSON(raw)
	require.Error(t, err)

	env, err := Validate(raw, namedSchema)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]any{"name": "A"}, env.Data)
}

func TestValidate_RoundTrip(t *testing.T) {
	data := map[string]any{
		"id":    domain.MustParseID("123456789012345678901"),
		"name":  "Ada",
		"tags":  []any{"fall-risk"},
		"rooms": int64(2),
	}
	s := schema.Shape(
		schema.Required("id", schema.ID()),
		schema.Required("name", schema.String()),
		schema.Required("tags", schema.Array(schema.String())),
		schema.Required("rooms", schema.Int()),
	)
	raw, err := json.Marshal(WrapSuccess(data, "ok", fixedNow))
	require.NoError(t, err)

	env, err := Validate(raw, s)
	require.NoError(t, err)
	assert.Equal(t, data, env.Data)
	assert.Equal(t, "ok", env.Message)
	assert.Equal(t, "2024-06-15T12:00:00Z", env.Timestamp.String())
}

func TestValidate_ErrorBranch(t *testing.T) {
	issues := []dErrors.Issue{{Path: "body.first_name", Message: "is required"}}
	raw, err := json.Marshal(WrapError("VALIDATION_ERROR", "validation failed", issues, fixedNow))
	require.NoError(t, err)

	env, err := Validate(raw, namedSchema)
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	domainErr := env.Err()
	assert.True(t, dErrors.HasCode(domainErr, dErrors.CodeValidation))
	assert.Equal(t, issues, dErrors.IssuesOf(domainErr))
}

func TestValidate_DiscriminantExhaustiveness(t *testing.T) {
	success := SuccessSchema(namedSchema)

	t.Run("success true is never evaluated by the error branch", func(t *testing.T) {
		doc := map[string]any{
			"success":   true,
			"error":     map[string]any{"code": "X", "message": "y"},
			"timestamp": "2024-06-15T12:00:00Z",
		}
		_, attempted, err := validateDocument(doc, success)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedEnvelope))
		assert.Equal(t, []string{branchSuccess}, attempted)
		assert.Equal(t, []dErrors.Issue{{Path: "data", Message: "is required"}}, dErrors.IssuesOf(err))
	})

	t.Run("success false is never evaluated by the success branch", func(t *testing.T) {
		doc := map[string]any{
			"success":   false,
			"data":      map[string]any{"name": "A"},
			"timestamp": "2024-06-15T12:00:00Z",
		}
		_, attempted, err := validateDocument(doc, success)
		require.Error(t, err)
		assert.Equal(t, []string{branchError}, attempted)
		assert.Equal(t, []dErrors.Issue{{Path: "error", Message: "is required"}}, dErrors.IssuesOf(err))
	})

	t.Run("missing discriminant evaluates neither branch", func(t *testing.T) {
		_, attempted, err := validateDocument(map[string]any{"data": 1}, success)
		require.Error(t, err)
		assert.Empty(t, attempted)
		assert.Equal(t, "success", dErrors.IssuesOf(err)[0].Path)
	})

	t.Run("string discriminant is not coerced", func(t *testing.T) {
		_, err := ValidateAgainst([]byte(`{"success":"true","data":{"name":"A"},"timestamp":"2024-06-15T12:00:00Z"}`), success)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedEnvelope))
	})

	t.Run("non-JSON body is malformed", func(t *testing.T) {
		_, err := ValidateAgainst([]byte(`<html>bad gateway</html>`), success)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedEnvelope))
	})
}

func TestCursorPage(t *testing.T) {
	pageSchema := CursorPageSchema(namedSchema)

	t.Run("has_more follows next_cursor", func(t *testing.T) {
		next := EncodeCursor(domain.MustParseID("42"))
		for _, cursor := range []*string{nil, &next} {
			raw, err := json.Marshal(WrapCursorPage([]named{{Name: "A"}}, cursor, 500, fixedNow))
			require.NoError(t, err)

			env, err := Decode[CursorPage[named]](raw, pageSchema)
			require.NoError(t, err)
			p := env.Data.Pagination
			assert.Equal(t, p.NextCursor != nil, p.HasMore)
			assert.Equal(t, MaxLimit, p.Limit, "limit clamped")
		}
	})

	t.Run("rejects inconsistent pagination", func(t *testing.T) {
		raw := []byte(`{"success":true,"data":{"items":[],"pagination":{"next_cursor":null,"has_more":true,"limit":20}},"timestamp":"2024-06-15T12:00:00Z"}`)
		_, err := ValidateAgainst(raw, pageSchema)
		require.Error(t, err)
		assert.Equal(t, "data.pagination.has_more", dErrors.IssuesOf(err)[0].Path)
	})

	t.Run("rejects out-of-range limit in responses", func(t *testing.T) {
		raw := []byte(`{"success":true,"data":{"items":[],"pagination":{"next_cursor":null,"has_more":false,"limit":0}},"timestamp":"2024-06-15T12:00:00Z"}`)
		_, err := ValidateAgainst(raw, pageSchema)
		require.Error(t, err)
		assert.Equal(t, "data.pagination.limit", dErrors.IssuesOf(err)[0].Path)
	})

	t.Run("items beyond the clamped limit are dropped", func(t *testing.T) {
		items := make([]named, MaxLimit+5)
		for i := range items {
			items[i] = named{Name: "r"}
		}
		raw, err := json.Marshal(WrapCursorPage(items, nil, 1000, fixedNow))
		require.NoError(t, err)

		env, err := Decode[CursorPage[named]](raw, pageSchema)
		require.NoError(t, err)
		assert.Len(t, env.Data.Items, MaxLimit)

		small, err := json.Marshal(WrapCursorPage(items[:5], nil, 2, fixedNow))
		require.NoError(t, err)
		env, err = Decode[CursorPage[named]](small, pageSchema)
		require.NoError(t, err)
		assert.Len(t, env.Data.Items, 2)
	})

	t.Run("empty page encodes items as an array", func(t *testing.T) {
		b, err := json.Marshal(WrapCursorPage[named](nil, nil, 20, fixedNow))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":{"items":[],"pagination":{"next_cursor":null,"has_more":false,"limit":20}},"timestamp":"2024-06-15T12:00:00Z"}`, string(b))
	})
}

func TestOffsetPage(t *testing.T) {
	pageSchema := OffsetPageSchema(namedSchema)

	raw, err := json.Marshal(WrapOffsetPage([]named{{Name: "A"}, {Name: "B"}}, 41, 3, 20, fixedNow))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[{"name":"A"},{"name":"B"}],"meta":{"total":41,"page":3,"limit":20,"totalPages":3},"timestamp":"2024-06-15T12:00:00Z"}`, string(raw))

	env, err := ValidateAgainst(raw, pageSchema)
	require.NoError(t, err)
	assert.Equal(t, &OffsetMeta{Total: 41, Page: 3, Limit: 20, TotalPages: 3}, env.Meta)

	bad := []byte(`{"success":true,"data":[],"meta":{"total":41,"page":1,"limit":20,"totalPages":2},"timestamp":"2024-06-15T12:00:00Z"}`)
	_, err = ValidateAgainst(bad, pageSchema)
	require.Error(t, err)
	assert.Equal(t, "meta.totalPages", dErrors.IssuesOf(err)[0].Path)
}

func TestQuerySchemas(t *testing.T) {
	cases := map[string]struct {
		in        map[string]any
		wantLimit int64
	}{
		"default":   {in: map[string]any{}, wantLimit: DefaultLimit},
		"in range":  {in: map[string]any{"limit": "50"}, wantLimit: 50},
		"above max": {in: map[string]any{"limit": "1000"}, wantLimit: MaxLimit},
		"below min": {in: map[string]any{"limit": "0"}, wantLimit: MinLimit},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := CursorQuerySchema().Validate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, out["limit"])
		})
	}

	out, err := OffsetQuerySchema().Validate(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out["page"])

	_, err = OffsetQuerySchema().Validate(map[string]any{"page": "0"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCursorCodec(t *testing.T) {
	id := domain.MustParseID("123456789012345678901")
	got, err := DecodeCursor(EncodeCursor(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = DecodeCursor("not base64!")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = DecodeCursor(EncodeCursor(domain.ID{}))
	assert.Error(t, err)
}

func TestFromError(t *testing.T) {
	env := FromError(dErrors.NewValidation([]dErrors.Issue{{Path: "query.limit", Message: "must be an integer"}}), fixedNow)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.NotNil(t, env.Error.Details)

	env = FromError(assert.AnError, fixedNow)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.Equal(t, "internal error", env.Error.Message)
}
