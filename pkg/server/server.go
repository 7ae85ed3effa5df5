// Package server exposes the crystal pipeline over HTTP: validation,
// SVG rendering, and STL/glTF export.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"gocrystal/pkg/cdl"
	"gocrystal/pkg/crystal"
	"gocrystal/pkg/ctxlog"
	"gocrystal/pkg/render"
)

// Server routes the API endpoints.
type Server struct {
	cfg Config
	log *slog.Logger
	mux *http.ServeMux
}

// New builds a Server and registers its routes.
func New(cfg Config, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/validate", s.handleValidate)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/export/stl", s.handleExportSTL)
	s.mux.HandleFunc("/api/export/gltf", s.handleExportGLTF)
	return s
}

// Handler returns the router wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

// ListenAndServe blocks serving on the configured address.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.cfg.Addr)
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := "*"
	if len(s.cfg.CORSOrigins) == 1 {
		origin = s.cfg.CORSOrigins[0]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestBody struct {
	CDL    string   `json:"cdl"`
	Elev   *float64 `json:"elev"`
	Azim   *float64 `json:"azim"`
	Width  *int     `json:"width"`
	Height *int     `json:"height"`
	Scale  *float64 `json:"scale"`
}

type validateForm struct {
	Miller string  `json:"miller"`
	Scale  float64 `json:"scale"`
}

type validateParsed struct {
	System     string         `json:"system"`
	PointGroup string         `json:"pointGroup"`
	FormsCount int            `json:"formsCount"`
	Forms      []validateForm `json:"forms"`
}

type validateResponse struct {
	Valid  bool            `json:"valid"`
	Error  string          `json:"error,omitempty"`
	Parsed *validateParsed `json:"parsed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isInputError reports whether err is the user's fault (→ 400) rather than
// an internal failure (→ 500).
func isInputError(err error) bool {
	var lexErr *cdl.LexError
	var parseErr *cdl.ParseError
	var arityErr *cdl.MillerArityError
	var refErr *cdl.UnresolvedReferenceError
	return errors.Is(err, cdl.ErrEmptyInput) ||
		errors.Is(err, cdl.ErrInputTooLong) ||
		errors.Is(err, cdl.ErrUnknownSystem) ||
		errors.Is(err, cdl.ErrUnterminatedFeatures) ||
		errors.As(err, &lexErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &arityErr) ||
		errors.As(err, &refErr)
}

func (s *Server) decode(r *http.Request) (requestBody, error) {
	var body requestBody
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		body.CDL = q.Get("cdl")
		if v := q.Get("elev"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				body.Elev = &f
			}
		}
		if v := q.Get("azim"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				body.Azim = &f
			}
		}
		if v := q.Get("width"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				body.Width = &n
			}
		}
		if v := q.Get("height"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				body.Height = &n
			}
		}
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("invalid request body: %w", err)
	}
	return body, nil
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	body, err := s.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	parsed, err := cdl.Parse(body.CDL)
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	flat := parsed.FlatForms()
	resp := validateResponse{
		Valid: true,
		Parsed: &validateParsed{
			System:     parsed.System,
			PointGroup: parsed.PointGroup,
			FormsCount: len(flat),
			Forms:      make([]validateForm, len(flat)),
		},
	}
	for i, f := range flat {
		resp.Parsed.Forms[i] = validateForm{Miller: f.Miller.String(), Scale: f.Scale}
	}
	writeJSON(w, http.StatusOK, resp)
}

// generate runs the pipeline with the request logger attached.
func (s *Server) generate(r *http.Request, cdlText string) (*crystal.Result, error) {
	ctx := ctxlog.WithLogger(r.Context(), s.log)
	return crystal.Generate(ctx, cdlText)
}

func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	if isInputError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("pipeline failure", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
		return
	}
	body, err := s.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.generate(r, body.CDL)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	opts := render.SVGOptions{Elev: s.cfg.Elev, Azim: s.cfg.Azim, Width: s.cfg.Width, Height: s.cfg.Height}
	if body.Elev != nil {
		opts.Elev = *body.Elev
	}
	if body.Azim != nil {
		opts.Azim = *body.Azim
	}
	if body.Width != nil {
		opts.Width = *body.Width
	}
	if body.Height != nil {
		opts.Height = *body.Height
	}

	svg := render.EncodeSVG(result.Geometry, opts)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

func (s *Server) handleExportSTL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	body, err := s.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.generate(r, body.CDL)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	scale := 10.0
	if body.Scale != nil {
		scale = *body.Scale
	}
	if scale < 1 {
		scale = 1
	} else if scale > 100 {
		scale = 100
	}

	stl := render.EncodeSTL(result.Geometry, scale)
	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", `attachment; filename="crystal.stl"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(stl))
}

func (s *Server) handleExportGLTF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	body, err := s.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.generate(r, body.CDL)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	scale := 1.0
	if body.Scale != nil {
		scale = *body.Scale
	}
	if scale < 0.1 {
		scale = 0.1
	} else if scale > 10 {
		scale = 10
	}

	doc, err := render.EncodeGLTF(result.Geometry, scale)
	if err != nil {
		s.log.Error("gltf encode failure", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "model/gltf+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
