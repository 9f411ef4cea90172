// Package pkg provides the libraries behind lingo, the package manager and
// build tool for Lingua Franca.
//
// # Overview
//
// A lingo project is a directory with a Lingo.toml manifest. The manifest
// declares apps (one executable per main reactor), an optional exported
// library and versioned dependencies fetched from local paths, git
// repositories or tarballs. Building a project resolves those dependencies
// into Lingo.lock and then drives lfc and the target toolchain of every app.
//
// # Architecture
//
// The data flow of "lingo build":
//
//	Lingo.toml
//	     ↓
//	[manifest]  parse, validate, fill in defaults
//	     ↓
//	[lock]      reuse a valid Lingo.lock, or:
//	[deps]      pull dependency trees ([fetch], [checksum], [store])
//	            and flatten them to one version per name
//	     ↓
//	[properties] aggregate library build properties into each app
//	     ↓
//	[build]     partition apps by toolchain and run lfc, CMake,
//	            npm/pnpm or Cargo per batch
//
// [pipeline] runs these stages for every command. internal/cli exposes
// them as the lingo command.
//
// # Main Packages
//
// ## Resolution
//
// [manifest] - Lingo.toml encoding, app and library configuration, main
// reactor discovery for "lingo init".
//
// [version] - Semantic versions and requirement intervals.
//
// [fetch] - Source fetchers for path, git and tarball dependencies.
// [fetch/fetchtest] serves packages from memory for tests.
//
// [checksum] - Deterministic directory content hashes.
//
// [store] - Content-addressed package store below build/libraries.
//
// [deps] - Breadth-first dependency pulling and version flattening.
//
// [lock] - Lingo.lock reading, validation and writing.
//
// ## Building
//
// [properties] - CMake include snippets contributed by libraries.
//
// [build] - Batch build orchestration with keep-going and abort semantics,
// plus the toolchain backends.
//
// [pipeline] - Load, resolve and execute, shared by every command.
//
// ## Output
//
// [render/tree] - Text dependency trees.
//
// [render/nodelink] - Graphviz dependency diagrams (DOT, SVG, PNG, PDF).
//
// [dag] - The layered graph both renderers draw from.
//
// ## Infrastructure
//
// [errors] - Coded errors with user-facing messages.
//
// [observability] - Hooks for resolution, build, cache and HTTP events.
//
// [cache] and [httputil] - Cached, retrying tarball downloads.
//
// [templates] - Starter sources written by "lingo init".
//
// [buildinfo] - Version information injected at link time.
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/build/...       # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// Every capability that reaches outside the process (git, HTTP, lfc and
// the toolchains) is injected, so the test suite runs offline.
//
// [manifest]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/manifest
// [version]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/version
// [fetch]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/fetch
// [fetch/fetchtest]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/fetch/fetchtest
// [checksum]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/checksum
// [store]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/store
// [deps]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/deps
// [lock]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/lock
// [properties]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/properties
// [build]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/build
// [pipeline]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/pipeline
// [render/tree]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/render/tree
// [render/nodelink]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/render/nodelink
// [dag]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/dag
// [errors]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/observability
// [cache]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/httputil
// [templates]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/templates
// [buildinfo]: https://pkg.go.dev/github.com/lingo-build/lingo/pkg/buildinfo
package pkg
