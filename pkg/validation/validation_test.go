package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carehub/pkg/domain-errors"
)

type serverConfig struct {
	Addr         string `validate:"required"`
	Environment  string `validate:"oneof=local dev prod"`
	MaxBodyBytes int64  `validate:"min=1024"`
}

func TestValidate(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, Validate(serverConfig{Addr: ":8080", Environment: "dev", MaxBodyBytes: 4096}))
	})

	t.Run("one issue per failing field", func(t *testing.T) {
		err := Validate(serverConfig{Environment: "staging", MaxBodyBytes: 1})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, []dErrors.Issue{
			{Path: "addr", Message: "is required"},
			{Path: "environment", Message: "must be one of [local dev prod]"},
			{Path: "max_body_bytes", Message: "must be at least 1024"},
		}, dErrors.IssuesOf(err))
	})
}

func TestVar(t *testing.T) {
	cases := []struct {
		value any
		tag   string
		ok    bool
		msg   string
	}{
		{"nurse@example.org", "email", true, ""},
		{"nurse", "email", false, "must be a valid email"},
		{"+14155552671", "e164", true, ""},
		{"555-0100", "e164", false, "must be an E.164 phone number"},
		{"admissions-faq", "slug", true, ""},
		{"Admissions FAQ", "slug", false, "must be a lowercase slug"},
		{"   ", "notblank", false, "must not be blank"},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			msg, ok := Var(tc.value, tc.tag)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestKnownTag(t *testing.T) {
	assert.True(t, KnownTag("email"))
	assert.True(t, KnownTag("slug"))
	assert.False(t, KnownTag("definitely_not_a_tag"))
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"Addr":          "addr",
		"MaxBodyBytes":  "max_body_bytes",
		"DatabaseURL":   "database_url",
		"URLPath":       "url_path",
		"already_snake": "already_snake",
	} {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
