package server

import (
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/linkroute/pkg/buildinfo"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/observability"
	"github.com/matzehuels/linkroute/pkg/pipeline"
	"github.com/matzehuels/linkroute/pkg/scene"
)

// contentTypes maps artifact formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// sceneFormats maps request media types to scene encodings.
var sceneFormats = map[string]scene.Format{
	"application/json":   scene.FormatJSON,
	"application/toml":   scene.FormatTOML,
	"application/yaml":   scene.FormatYAML,
	"application/x-yaml": scene.FormatYAML,
	"text/yaml":          scene.FormatYAML,
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format, err := sceneFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	sc, err := scene.Decode(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "scene exceeds %d bytes", s.cfg.MaxBodyBytes)
		}
		s.writeError(w, r, err)
		return
	}
	if sc.CostImage != "" {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "cost images are not accepted by the preview server"))
		return
	}
	opts.Scene = sc

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[out])
	w.Header().Set("X-Linkroute-Scene-Hash", res.SceneHash)
	w.Header().Set("X-Linkroute-Cache", strconv.FormatBool(res.CacheInfo.RenderHit))
	w.Header().Set("X-Linkroute-Unreachable", strconv.Itoa(res.Routing.Stats.Unreachable))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[out])
}

// requestOptions derives the pipeline options of one request from the
// server defaults and the query string.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := errors.ValidateFormat(format, pipeline.ValidFormats...); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	for name, dst := range map[string]*bool{
		"labels":       &opts.Render.Labels,
		"bundle":       &opts.Route.Bundle,
		"cost_overlay": &opts.Render.CostOverlay,
		"transparent":  &opts.Render.Transparent,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
		}
		*dst = v
	}
	if raw := q.Get("scale"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter scale")
		}
		opts.Render.Scale = v
	}
	return opts, nil
}

// sceneFormat picks the scene encoding from the scene query parameter or
// the Content-Type header. JSON is assumed when neither is set.
func sceneFormat(r *http.Request) (scene.Format, error) {
	if name := r.URL.Query().Get("scene"); name != "" {
		if err := errors.ValidateFormat(name, scene.Formats...); err != nil {
			return "", err
		}
		return scene.Format(name), nil
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return scene.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
	}
	if f, ok := sceneFormats[mt]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if errors.Is(err, errors.ErrCodeInvalidInput) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// instrument reports every request to the HTTP hooks and echoes the
// request ID.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, path, status, d)
		s.logger.Debug("request", "method", r.Method, "path", path, "status", status, "bytes", ww.BytesWritten(), "duration", d)
	})
}
