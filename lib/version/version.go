// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build metadata for the fropbox binaries.
// The variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/benzlock/fropbox/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

// These variables are set via -ldflags at build time. The defaults
// apply to builds made without the release tooling.
var (
	// Version is the semantic version of the release.
	Version = "0.1.0-dev"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the build tree had uncommitted changes.
	GitDirty = ""

	// BuildTime is the UTC timestamp of the build in RFC 3339 format.
	BuildTime = "unknown"
)

// Info returns a single-line human-readable description of the build.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Short returns just the semantic version.
func Short() string {
	return Version
}

// Commit returns the commit hash, with a -dirty suffix when the tree
// was not clean at build time.
func Commit() string {
	if GitDirty == "true" {
		return GitCommit + "-dirty"
	}
	return GitCommit
}
