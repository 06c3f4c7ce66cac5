package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stitchgrid/pkg/buildinfo"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// =============================================================================
// Patterns
// =============================================================================

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.gate.TryAcquire(1) {
		s.writeError(w, r, errors.New(errors.ErrCodeBusy, "a generation is already running, retry later"))
		return
	}
	defer s.gate.Release(1)

	opts, err := s.parsePatternRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	h := w.Header()
	h.Set("Content-Type", contentType(format))
	h.Set("X-Pattern-Id", result.ID())
	h.Set("X-Pattern-Size", strconv.Itoa(result.Generation.Grid.Width)+"x"+strconv.Itoa(result.Generation.Grid.Height))
	h.Set("X-Cache", cacheStatus(result.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// parsePatternRequest reads the uploaded image and the form parameters.
// Absent parameters keep the pipeline defaults.
func (s *Server) parsePatternRequest(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "upload exceeds %d bytes", s.maxUpload)
		}
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected a multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "missing image file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image")
	}

	opts := pipeline.Options{
		Image:     data,
		ImageName: header.Filename,
		Catalog:   s.catalog,
		Logger:    s.logger,
		Filter:    r.FormValue("filter"),
		Metric:    r.FormValue("metric"),
		Clusterer: r.FormValue("clusterer"),
		Formats:   []string{pipeline.FormatJSON},
	}
	if f := strings.TrimSpace(r.FormValue("format")); f != "" {
		opts.Formats = []string{f}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"per_unit", &opts.PerUnit},
		{"colors", &opts.Colors},
		{"pixel_scale", &opts.PixelScale},
		{"cell_size", &opts.CellSize},
	}
	for _, p := range ints {
		if err := formInt(r, p.name, p.dst); err != nil {
			return pipeline.Options{}, err
		}
	}
	if v := r.FormValue("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "seed must be a non-negative integer, got %q", v)
		}
		opts.Seed = seed
	}
	opts.GridLines = formBool(r, "grid_lines")
	opts.Labels = formBool(r, "labels")

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func formInt(r *http.Request, name string, dst *int) error {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	*dst = n
	return nil
}

func formBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.FormValue(name))
	return b
}

func cacheStatus(info pipeline.CacheInfo) string {
	switch {
	case info.GenerateHit && info.RenderHit:
		return "hit"
	case info.GenerateHit:
		return "partial"
	default:
		return "miss"
	}
}

// =============================================================================
// Threads
// =============================================================================

type threadResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
	RGB  [3]int `json:"rgb"`
}

func newThreadResponse(t thread.Color) threadResponse {
	return threadResponse{
		ID:   t.ID,
		Name: t.Name,
		Hex:  t.Hex(),
		RGB:  [3]int{int(t.RGB.R), int(t.RGB.G), int(t.RGB.B)},
	}
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	out := []threadResponse{}
	for _, t := range s.catalog.All() {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.ID), search) &&
			!strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		out = append(out, newThreadResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(out),
		"threads": out,
	})
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateThreadID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, ok := s.catalog.Lookup(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeThreadNotFound, "thread %s not in catalog", id))
		return
	}
	writeJSON(w, http.StatusOK, newThreadResponse(t))
}

// =============================================================================
// Meta
// =============================================================================

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
