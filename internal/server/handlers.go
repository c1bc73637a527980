package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agusx1211/notebake"
	"github.com/agusx1211/notebake/internal/report"
)

// overrides carries per-request settings. Nil fields keep the server's.
type overrides struct {
	Links            *bool `json:"links,omitempty"`
	Embeds           *bool `json:"embeds,omitempty"`
	BakeInList       *bool `json:"bake_in_list,omitempty"`
	ConvertFileLinks *bool `json:"convert_file_links,omitempty"`
}

func (o overrides) apply(s notebake.Settings) notebake.Settings {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.IncludeLinks, o.Links)
	set(&s.IncludeEmbeds, o.Embeds)
	set(&s.BakeInList, o.BakeInList)
	set(&s.ConvertFileLinks, o.ConvertFileLinks)
	return s
}

func queryOverrides(q url.Values) (overrides, error) {
	var o overrides
	for key, dst := range map[string]**bool{
		"links":              &o.Links,
		"embeds":             &o.Embeds,
		"bake_in_list":       &o.BakeInList,
		"convert_file_links": &o.ConvertFileLinks,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return o, errors.New("invalid boolean for " + key + ": " + raw)
		}
		*dst = &v
	}
	return o, nil
}

type bakeRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	overrides
}

// handleBake returns the baked note as markdown, or as JSON with its word
// count when format=json.
func (s *Server) handleBake(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := q.Get("input")
	if input == "" {
		jsonError(w, "input query parameter is required", http.StatusBadRequest)
		return
	}
	o, err := queryOverrides(q)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	baked, err := s.baker.BakeToString(r.Context(), input, o.apply(s.cfg.Settings))
	if err != nil {
		s.bakeError(w, input, err)
		return
	}

	if q.Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"input":   input,
			"content": baked,
			"words":   report.WordCount(baked),
		})
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(baked))
}

// handleBakeToFile bakes a note into the vault and returns the written path.
func (s *Server) handleBakeToFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req bakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		jsonError(w, "input is required", http.StatusBadRequest)
		return
	}

	written, err := s.baker.BakeToFile(r.Context(), req.Input, req.Output, req.apply(s.cfg.Settings))
	if err != nil {
		s.bakeError(w, req.Input, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"input":  req.Input,
		"output": written,
	})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := q.Get("input")
	if input == "" {
		jsonError(w, "input query parameter is required", http.StatusBadRequest)
		return
	}
	o, err := queryOverrides(q)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	words, err := s.baker.CountWords(r.Context(), input, o.apply(s.cfg.Settings))
	if err != nil {
		s.bakeError(w, input, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"input": input,
		"words": words,
	})
}

func (s *Server) bakeError(w http.ResponseWriter, input string, err error) {
	if errors.Is(err, notebake.ErrInputNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.Error("bake failed", "input", input, "error", err)
	jsonError(w, "bake failed: "+err.Error(), http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
