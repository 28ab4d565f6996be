package preview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// renderDocument emits the single self-contained HTML document: an import map
// wiring module references and whitelisted externals, an error bridge that
// reports runtime failures to the host frame, and a bootstrap that loads the
// entry module.
func renderDocument(importMap map[string]string, entryRef string) string {
	entry, _ := json.Marshal(entryRef)

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
  html, body, #root { height: 100%; margin: 0; }
</style>
<script type="importmap">
`)
	b.WriteString(renderImportMap(importMap))
	b.WriteString(`
</script>
<script>
(function () {
  function report(message, stack) {
    if (window.parent !== window) {
      window.parent.postMessage({ type: "preview-error", message: String(message), stack: stack || "" }, "*");
    }
  }
  window.__reportPreviewError = function (err) {
    report(err && err.message ? err.message : err, err && err.stack);
  };
  window.addEventListener("error", function (ev) {
    report(ev.message, ev.error && ev.error.stack);
  });
  window.addEventListener("unhandledrejection", function (ev) {
    window.__reportPreviewError(ev.reason);
  });
})();
</script>
</head>
<body>
<div id="root"></div>
<script type="module">
`)
	fmt.Fprintf(&b, "import(%s).catch((err) => window.__reportPreviewError(err));\n", entry)
	b.WriteString(`</script>
</body>
</html>
`)
	return b.String()
}

// renderImportMap marshals the import map with sorted keys so document output
// is deterministic for a given module set.
func renderImportMap(importMap map[string]string) string {
	keys := make([]string, 0, len(importMap))
	for k := range importMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{\n  \"imports\": {\n")
	for i, k := range keys {
		name, _ := json.Marshal(k)
		url, _ := json.Marshal(importMap[k])
		fmt.Fprintf(&b, "    %s: %s", name, url)
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  }\n}")
	return b.String()
}
