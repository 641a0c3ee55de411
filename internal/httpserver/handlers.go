package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rx3lixir/ambient/internal/cache"
	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/generator"
	"github.com/rx3lixir/ambient/internal/publish"
	"github.com/rx3lixir/ambient/internal/wavfile"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	healthTimeout   = 2 * time.Second
)

// HealthResponse reports the state of optional backends
type HealthResponse struct {
	OK       bool              `json:"ok"`
	Time     time.Time         `json:"time"`
	Backends map[string]string `json:"backends"`
}

// AssetsResponse is one page of the catalog
type AssetsResponse struct {
	Assets []*db.Asset `json:"assets"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		OK:   true,
		Time: time.Now().UTC(),
		Backends: map[string]string{
			"catalog": "unconfigured",
			"cache":   "unconfigured",
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	for name, p := range s.health {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			s.log.Warn("Health check failed", "backend", name, "error", err)
			resp.Backends[name] = "error"
			resp.OK = false
			continue
		}
		resp.Backends[name] = "ok"
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.presets)
}

func (s *Server) HandleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.lookupPreset(chi.URLParam(r, "name"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

// HandleRenderPreset serves /ambient/{name}.wav
func (s *Server) HandleRenderPreset(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".wav")
	if !ok {
		s.handleError(w, NewNotFoundError("unknown asset "+file))
		return
	}

	p, err := s.lookupPreset(name)
	if err != nil {
		s.handleError(w, err)
		return
	}

	key := cache.RenderKey(p.Name, s.seed)
	hit := "MISS"

	var data []byte
	if s.cache != nil {
		cached, found, err := s.cache.Get(r.Context(), key)
		if err != nil {
			s.log.Warn("Render cache read failed", "key", key, "error", err)
		} else if found {
			data = cached
			hit = "HIT"
		}
	}

	if data == nil {
		data, _, err = s.render(p)
		if err != nil {
			s.handleError(w, err)
			return
		}
		if s.cache != nil {
			if err := s.cache.Set(r.Context(), key, data); err != nil {
				s.log.Warn("Render cache write failed", "key", key, "error", err)
			}
		}
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", hit)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error("Failed to write audio response", "asset", p.Name, "error", err)
	}
}

func (s *Server) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.handleError(w, NewUnavailableError("asset catalog is not configured"))
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var assets []*db.Asset
	if name := r.URL.Query().Get("name"); name != "" {
		assets, err = s.catalog.ListAssetsByName(r.Context(), name, limit, offset)
	} else {
		assets, err = s.catalog.ListAssets(r.Context(), limit, offset)
	}
	if err != nil {
		s.handleError(w, err)
		return
	}
	if assets == nil {
		assets = []*db.Asset{}
	}

	s.respondJSON(w, http.StatusOK, AssetsResponse{Assets: assets, Limit: limit, Offset: offset})
}

func (s *Server) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.handleError(w, NewUnavailableError("asset catalog is not configured"))
		return
	}

	asset, err := s.lookupAsset(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	res := publish.Result{Asset: asset}
	if s.publisher != nil {
		res.URL = s.publisher.PresignedURL(r.Context(), asset.ObjectPath)
	}

	s.respondJSON(w, http.StatusOK, res)
}

// HandleDeleteAsset drops the catalog record and then the stored object
func (s *Server) HandleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil || s.publisher == nil {
		s.handleError(w, NewUnavailableError("publishing is not configured"))
		return
	}

	asset, err := s.lookupAsset(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.catalog.DeleteAsset(r.Context(), asset.ID); err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.publisher.Unpublish(r.Context(), asset); err != nil {
		s.handleError(w, err)
		return
	}

	if claims, ok := claimsFromContext(r.Context()); ok {
		s.log.Info("Asset deleted over HTTP", "asset", asset.Name, "id", asset.ID, "by", claims.Subject)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandlePublishPreset(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		s.handleError(w, NewUnavailableError("publishing is not configured"))
		return
	}

	p, err := s.lookupPreset(chi.URLParam(r, "name"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	data, numSamples, err := s.render(p)
	if err != nil {
		s.handleError(w, err)
		return
	}

	res, err := s.publisher.Publish(r.Context(), uuid.New(), p, data, numSamples)
	if err != nil {
		s.handleError(w, err)
		return
	}

	if claims, ok := claimsFromContext(r.Context()); ok {
		s.log.Info("Preset published over HTTP", "asset", p.Name, "by", claims.Subject)
	}

	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) lookupPreset(name string) (generator.Preset, error) {
	p, ok := generator.Find(s.presets, name)
	if !ok {
		return generator.Preset{}, NewNotFoundError("unknown preset " + name)
	}
	return p, nil
}

func (s *Server) lookupAsset(r *http.Request) (*db.Asset, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, NewValidationError("asset id must be a uuid")
	}
	return s.catalog.GetAssetByID(r.Context(), id)
}

func (s *Server) render(p generator.Preset) ([]byte, int, error) {
	samples, err := generator.Render(p, s.seed)
	if err != nil {
		return nil, 0, err
	}

	data, err := wavfile.Bytes(samples, p.SampleRate)
	if err != nil {
		return nil, 0, err
	}
	return data, len(samples), nil
}

func pagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	limit, offset := defaultPageSize, 0

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return 0, 0, NewValidationError("limit must be between 1 and " + strconv.Itoa(maxPageSize))
		}
		limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, NewValidationError("offset must be a non-negative integer")
		}
		offset = n
	}

	return limit, offset, nil
}
