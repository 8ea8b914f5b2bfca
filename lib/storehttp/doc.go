// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package storehttp carries the append-only store contract over HTTP.
//
// The wire protocol is two POST routes:
//
//	POST /upload/{name}   raw request body appended to {name}
//	POST /copy            JSON {"file_name", "other_file", "offset",
//	                      "length"} — appends the byte range from
//	                      other_file to file_name
//
// Client implements store.Appender against a remote server exposing
// these routes; NewHandler exposes any store.Appender (in practice
// store.Local) as the server side. Neither side retries: a failed
// append leaves the target file short, and the only safe recovery is
// re-planning the whole file, which is the caller's decision.
package storehttp
