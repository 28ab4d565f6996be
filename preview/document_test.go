package preview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderImportMap_ValidAndSorted(t *testing.T) {
	t.Parallel()

	out := renderImportMap(map[string]string{
		"react":        "https://example.test/react",
		"sketch:entry": "data:text/javascript;base64,AA==",
	})

	var parsed struct {
		Imports map[string]string `json:"imports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Len(t, parsed.Imports, 2)
	assert.Equal(t, "https://example.test/react", parsed.Imports["react"])

	assert.Less(t, strings.Index(out, "react"), strings.Index(out, "sketch:entry"),
		"keys must render in sorted order for deterministic output")
}

func TestRenderDocument_Structure(t *testing.T) {
	t.Parallel()

	doc := renderDocument(map[string]string{"sketch:e": "data:text/javascript;base64,AA=="}, "sketch:e")

	assert.Contains(t, doc, `<div id="root">`)
	assert.Contains(t, doc, `import("sketch:e")`, "bootstrap must load the entry reference")
	assert.Contains(t, doc, "unhandledrejection", "rejected promises must reach the error bridge")
	assert.Contains(t, doc, "postMessage", "runtime errors must be reported to the host frame")
}
