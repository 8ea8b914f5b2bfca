// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package storehttp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/benzlock/fropbox/lib/store"
)

// MaxLiteralBodySize caps the body of a single literal append. The
// client splits a file into steps that are each at most the file's
// size, so this only guards against malformed or hostile requests.
const MaxLiteralBodySize = 1 << 30 // 1 GiB

// NewHandler returns the HTTP handler exposing appender under the
// store wire protocol. A nil logger means slog.Default().
func NewHandler(appender store.Appender, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{appender: appender, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/{name}", h.handleUpload)
	mux.HandleFunc("POST /copy", h.handleCopy)
	return mux
}

type handler struct {
	appender store.Appender
	logger   *slog.Logger
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := store.ValidateName(name); err != nil {
		httpError(w, http.StatusBadRequest, "invalid file name: %v", err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxLiteralBodySize+1))
	if err != nil {
		httpError(w, http.StatusBadRequest, "reading request body: %v", err)
		return
	}
	if int64(len(data)) > MaxLiteralBodySize {
		httpError(w, http.StatusRequestEntityTooLarge, "literal append exceeds %d bytes", MaxLiteralBodySize)
		return
	}

	if err := h.appender.AppendLiteral(r.Context(), name, data); err != nil {
		h.logger.Error("literal append failed", "target", name, "error", err)
		httpError(w, http.StatusInternalServerError, "append failed: %v", err)
		return
	}

	h.logger.Debug("literal append", "target", name, "bytes", len(data))
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		httpError(w, http.StatusUnsupportedMediaType, "copy body must be application/json, got %q", ct)
		return
	}

	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "decoding copy request: %v", err)
		return
	}
	if err := store.ValidateName(req.FileName); err != nil {
		httpError(w, http.StatusBadRequest, "invalid target name: %v", err)
		return
	}
	if err := store.ValidateName(req.OtherFile); err != nil {
		httpError(w, http.StatusBadRequest, "invalid source name: %v", err)
		return
	}
	if req.Offset < 0 || req.Length < 0 {
		httpError(w, http.StatusBadRequest, "negative copy range %d+%d", req.Offset, req.Length)
		return
	}

	if err := h.appender.AppendCopy(r.Context(), req.FileName, req.OtherFile, req.Offset, req.Length); err != nil {
		h.logger.Error("copy append failed",
			"target", req.FileName, "source", req.OtherFile,
			"offset", req.Offset, "length", req.Length, "error", err)
		httpError(w, http.StatusInternalServerError, "append failed: %v", err)
		return
	}

	h.logger.Debug("copy append",
		"target", req.FileName, "source", req.OtherFile,
		"offset", req.Offset, "length", req.Length)
	writeJSON(w, http.StatusOK, struct{}{})
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	http.Error(w, fmt.Sprintf(format, args...), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
