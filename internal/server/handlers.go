package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KaramelBytes/statloom/internal/analysis"
	"github.com/KaramelBytes/statloom/internal/dataset"
)

// apiError is the JSON body of every non-200 response.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("request_id", requestIDFrom(r.Context())))

	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		code := "bad_request"
		if errors.Is(err, analysis.ErrUnknownMethod) {
			code = "unknown_method"
		}
		writeError(w, http.StatusBadRequest, code, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Errorf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_multipart", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", errors.New("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	lo := s.cfg.Load
	if sheet := r.URL.Query().Get("sheet"); sheet != "" {
		lo.SheetName = sheet
	}
	var ds *dataset.Dataset
	name := filepath.Base(header.Filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		ds, err = dataset.ReadCSV(file, name, lo)
	case ".tsv":
		lo.Delimiter = '\t'
		ds, err = dataset.ReadCSV(file, name, lo)
	case ".xlsx", ".xlsm":
		ds, err = dataset.ReadXLSX(file, name, lo)
	default:
		err = fmt.Errorf("%s: %w (want .csv, .tsv or .xlsx)", name, dataset.ErrUnsupportedFormat)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "load_failed", err)
		return
	}

	p, err := analysis.NewAssembler(log, opts).Assemble(r.Context(), ds)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrEmptyDataset):
		writeError(w, http.StatusBadRequest, "empty_dataset", err)
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
		return
	default:
		log.Error("profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// optionsFromQuery overlays query parameters on the configured defaults.
func (s *Server) optionsFromQuery(q url.Values) (analysis.Options, error) {
	opts := s.cfg.Analysis
	if v := q.Get("method"); v != "" {
		m, err := analysis.ParseMethod(v)
		if err != nil {
			return opts, err
		}
		opts.Method = m
	}
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid top_n: %q", v)
		}
		opts.TopN = n
	}

	cmp := analysis.ComparisonRequest{
		GroupColumn:  q.Get("group_by"),
		TargetColumn: q.Get("target"),
		GroupA:       q.Get("group_a"),
		GroupB:       q.Get("group_b"),
	}
	if v := q.Get("alpha"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || a <= 0 || a >= 1 {
			return opts, fmt.Errorf("invalid alpha: %q", v)
		}
		cmp.Alpha = a
	} else {
		cmp.Alpha = s.cfg.Alpha
	}
	switch set := countSet(cmp.GroupColumn, cmp.TargetColumn, cmp.GroupA, cmp.GroupB); set {
	case 0:
	case 4:
		opts.Comparison = &cmp
	default:
		return opts, errors.New("group_by, target, group_a and group_b must be given together")
	}

	tx, ty := q.Get("trend_x"), q.Get("trend_y")
	switch countSet(tx, ty) {
	case 0:
	case 2:
		opts.Trend = &analysis.TrendRequest{X: tx, Y: ty}
	default:
		return opts, errors.New("trend_x and trend_y must be given together")
	}
	return opts, nil
}

func countSet(vals ...string) int {
	n := 0
	for _, v := range vals {
		if v != "" {
			n++
		}
	}
	return n
}

// writeJSON encodes v before writing the status, so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(apiError{Error: "encode response: " + err.Error(), Code: "internal"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, apiError{Error: err.Error(), Code: code})
}
