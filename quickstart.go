// Package quickstart bundles the API server sources that new projects are generated from.
package quickstart

import "embed"

// ModulePath is the import path the bundled sources are written against.
const ModulePath = "go-quickstart"

// Source holds cmd/api, config and internal as they build in this repository.
//
//go:embed cmd/api config internal
var Source embed.FS
