package transform

import (
	gopath "path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Lowerer turns one file's source into plain executable ES module code:
// type annotations stripped, JSX lowered to calls, imports left in place.
// Implementations report failures as *Error.
type Lowerer interface {
	Lower(path, source string) (string, error)
}

// ESBuildLowerer lowers component source through esbuild's transform API.
// JSX uses the automatic runtime, so lowered output imports
// "<JSXImportSource>/jsx-runtime" like any other bare specifier.
type ESBuildLowerer struct {
	JSXImportSource string
}

// NewESBuildLowerer creates an ESBuildLowerer targeting the React runtime.
func NewESBuildLowerer() *ESBuildLowerer {
	return &ESBuildLowerer{JSXImportSource: "react"}
}

func (l *ESBuildLowerer) Lower(path, source string) (string, error) {
	res := api.Transform(source, api.TransformOptions{
		Loader:          loaderFor(path),
		Format:          api.FormatESModule,
		Target:          api.ES2020,
		JSX:             api.JSXAutomatic,
		JSXImportSource: l.JSXImportSource,
		Sourcefile:      path,
		LogLevel:        api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		msg := res.Errors[0]
		line := 0
		if msg.Location != nil {
			line = msg.Location.Line
		}
		return "", &Error{Path: path, Message: msg.Text, Line: line}
	}
	return string(res.Code), nil
}

func loaderFor(path string) api.Loader {
	switch strings.ToLower(gopath.Ext(path)) {
	case ".tsx":
		return api.LoaderTSX
	case ".ts":
		return api.LoaderTS
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}
