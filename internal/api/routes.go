package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgpai22/recut/internal/caption"
	"github.com/mgpai22/recut/internal/subtitle"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	cfg = cfg.withDefaults()
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/v1", func(r chi.Router) {
		r.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))

		r.Post("/captions/extract", extractHandler(cfg))
		r.Post("/captions/reconcile", reconcileHandler(cfg))
		r.Post("/captions/export", exportHandler(cfg))
		r.Post("/ranges/combine", combineHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// request body is the raw SubRip document
func extractHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeBodyError(w, err)
			return
		}

		captions, warnings := caption.Scan(string(body))
		cfg.Logger.Debugw("extracted captions",
			"captions", len(captions),
			"warnings", len(warnings),
			"request_id", RequestIDFromContext(r.Context()),
		)

		WriteJSON(w, http.StatusOK, ExtractResponse{
			Captions: CaptionsToJSON(captions),
			Warnings: WarningsToJSON(warnings),
		})
	}
}

func combineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CombineRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		ranges, err := RangesFromJSON(req.Ranges)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_RANGE")
			return
		}

		WriteJSON(w, http.StatusOK, CombineResponse{
			Ranges: RangesToJSON(caption.CombineRanges(ranges)),
		})
	}
}

func reconcileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReconcileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		removed, err := RangesFromJSON(req.Removed)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_RANGE")
			return
		}

		in, err := CaptionsFromJSON(req.Captions)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_RANGE")
			return
		}

		captions := caption.Reconcile(in, removed)
		cfg.Logger.Debugw("reconciled captions",
			"in", len(req.Captions),
			"out", len(captions),
			"removed_ranges", len(removed),
			"request_id", RequestIDFromContext(r.Context()),
		)

		WriteJSON(w, http.StatusOK, ReconcileResponse{Captions: CaptionsToJSON(captions)})
	}
}

var contentTypes = map[subtitle.Format]string{
	subtitle.FormatSRT: "application/x-subrip; charset=utf-8",
	subtitle.FormatVTT: "text/vtt; charset=utf-8",
	subtitle.FormatASS: "text/x-ssa; charset=utf-8",
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := cfg.DefaultFormat
		if name := r.URL.Query().Get("format"); name != "" {
			parsed, err := subtitle.ParseFormat(name)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "UNSUPPORTED_FORMAT")
				return
			}
			format = parsed
		}

		var req ExportRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		writer, err := subtitle.NewWriter(format)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "UNSUPPORTED_FORMAT")
			return
		}
		captions, err := CaptionsFromJSON(req.Captions)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_RANGE")
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "captions"+subtitle.ExtensionForFormat(format)))
		w.WriteHeader(http.StatusOK)
		if err := writer.Encode(w, subtitle.FromCaptions(captions)); err != nil {
			cfg.Logger.Warnw("failed to write export",
				"error", err,
				"request_id", RequestIDFromContext(r.Context()),
			)
		}
	}
}

// decodeJSON writes the error response itself and reports whether decoding
// succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeBodyError(w, err)
		return false
	}
	return true
}

func writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		WriteError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), "BODY_TOO_LARGE")
		return
	}
	WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
}
