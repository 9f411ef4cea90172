// Package build runs a command over a batch of apps using the toolchain each
// app's target language needs.
//
// # Batches
//
// [Orchestrator.Execute] partitions apps by ([BuildSystem], target language)
// and hands each group to the [Backend] registered for its build system. A
// backend drives its group through stages over a [Results] value:
//
//   - [Results.Map] runs one app at a time.
//   - [Results.ParallelMap] runs pending apps on a bounded worker pool.
//   - [Results.Gather] runs once for all pending apps and broadcasts a
//     failure to every one of them.
//
// Every stage skips apps that already failed. With keep-going disabled the
// first failure marks every still pending app as aborted, so no later stage
// touches them. Nothing in this package panics or exits the process on a
// failed build.
//
// # Toolchains
//
// C and C++ apps build with CMake, TypeScript apps with pnpm (or npm when
// pnpm is not installed), Rust apps with Cargo and everything else through
// lfc alone. External commands go through a [Runner], so tests substitute a
// fake and never spawn real toolchains.
package build
