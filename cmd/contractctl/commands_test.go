package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRoutes(t *testing.T) {
	out, _, err := execute(t, "", "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Greater(t, len(lines), 10)

	var listLine string
	for _, l := range lines {
		if strings.Contains(l, "resident.list") {
			listLine = l
		}
	}
	require.NotEmpty(t, listLine)
	assert.Equal(t, []string{"GET", "/residents", "resident.list", "cursor"}, strings.Fields(listLine))
	assert.Contains(t, out, "accounting.list_invoices")
}

func TestSchema(t *testing.T) {
	t.Run("entity variant includes server fields", func(t *testing.T) {
		out, _, err := execute(t, "", "schema", "resident.Resident")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		props := doc["properties"].(map[string]any)
		assert.Contains(t, props, "id")
		assert.Contains(t, props, "created_at")
	})

	t.Run("create variant omits server fields", func(t *testing.T) {
		out, _, err := execute(t, "", "schema", "resident.Resident", "--variant", "create")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		props := doc["properties"].(map[string]any)
		assert.NotContains(t, props, "id")
		assert.NotContains(t, props, "updated_at")
		assert.Contains(t, props, "first_name")
	})

	t.Run("yaml format", func(t *testing.T) {
		out, _, err := execute(t, "", "schema", "resident.Resident", "--format", "yaml")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "object", doc["type"])
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, _, err := execute(t, "", "schema", "resident.Nope")
		require.Error(t, err)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, _, err := execute(t, "", "schema", "resident.Resident", "--variant", "patch")
		require.Error(t, err)
	})
}

func TestDescribe(t *testing.T) {
	out, _, err := execute(t, "", "describe", "resident.get")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "GET", doc["method"])
	assert.Equal(t, "/residents/:id", doc["path"])
	assert.Contains(t, doc["responses"], "404")

	_, _, err = execute(t, "", "describe", "resident.nope")
	require.Error(t, err)
}

const notFoundBody = `{"success":false,"error":{"code":"NOT_FOUND","message":"resident not found"},"timestamp":"2026-01-01T00:00:00Z"}`

func TestValidate(t *testing.T) {
	t.Run("declared error response from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "resp.json")
		require.NoError(t, os.WriteFile(path, []byte(notFoundBody), 0o600))

		out, _, err := execute(t, "", "validate", "--op", "resident.get", "--status", "404", path)
		require.NoError(t, err)
		assert.Equal(t, "ok resident.get 404 (error NOT_FOUND)\n", out)
	})

	t.Run("stdin", func(t *testing.T) {
		out, _, err := execute(t, notFoundBody, "validate", "--op", "resident.get", "--status", "404", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "ok resident.get 404")
	})

	t.Run("undeclared status", func(t *testing.T) {
		_, _, err := execute(t, notFoundBody, "validate", "--op", "resident.get", "--status", "418", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "418")
	})

	t.Run("success body missing data fields", func(t *testing.T) {
		body := `{"success":true,"data":{"id":"1"},"timestamp":"2026-01-01T00:00:00Z"}`
		_, stderr, err := execute(t, body, "validate", "--op", "resident.get", "--status", "200", "-")
		require.Error(t, err)
		assert.Contains(t, stderr, "first_name")
	})

	t.Run("op flag is required", func(t *testing.T) {
		_, _, err := execute(t, notFoundBody, "validate", "-")
		require.Error(t, err)
	})
}
