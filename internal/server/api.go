package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/quintessa/grantwatch/internal/item"
)

// writeJSON sends a JSON envelope. Every response carries the error-bus
// snapshot so callers always see the diagnostics accumulated during the
// request.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["errors"] = s.bus.Snapshot()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	items, err := s.itemMaps()
	if err != nil {
		s.bus.Push("api items", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleItemByUID(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimPrefix(r.URL.Path, "/api/items/")
	if uid == "" || strings.Contains(uid, "/") {
		s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch map[string]string
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
			return
		}
		if status, ok := patch["status"]; ok && !validStatus(status) {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid status"})
			return
		}
		found, err := s.store.UpdateItemByUID(uid, patch)
		if err != nil {
			s.bus.Push("api items", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if !found {
			s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "item not found"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"updated": uid})

	case http.MethodDelete:
		found, err := s.store.DeleteItemByUID(uid)
		if err != nil {
			s.bus.Push("api items", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if !found {
			s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "item not found"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"deleted": uid})

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		links, err := s.store.ReadLinks()
		if err != nil {
			s.bus.Push("api links", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"links": links, "count": len(links)})

	case http.MethodPost:
		var req struct {
			URL   string `json:"url"`
			Grupo string `json:"grupo"`
			Nome  string `json:"nome"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "url is required"})
			return
		}

		uid := item.LinkUID(req.URL, item.NormalizeGroup(req.Grupo))
		if existing, _ := s.store.FindLink(uid); existing != nil {
			s.writeJSON(w, http.StatusOK, map[string]any{"link": existing, "created": false})
			return
		}

		link, err := s.store.AddLink(req.URL, req.Grupo, req.Nome)
		if err != nil {
			s.bus.Push("api links", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]any{"link": link, "created": true})

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleLinkByUID(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if uid == "" || strings.Contains(uid, "/") {
		s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch map[string]string
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
			return
		}
		found, err := s.store.UpdateLink(uid, patch)
		if err != nil {
			s.bus.Push("api links", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if !found {
			s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "link not found"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"updated": uid})

	case http.MethodDelete:
		found, err := s.store.DeleteLink(uid)
		if err != nil {
			s.bus.Push("api links", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if !found {
			s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "link not found"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"deleted": uid})

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	var req struct {
		MinDays int      `json:"min_days"`
		Groups  []string `json:"groups"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body means defaults
	}

	s.bus.Reset()
	result, err := s.collector.Run(r.Context(), req.MinDays, req.Groups)
	if err != nil {
		s.bus.Push("api collect", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"found":      result.TotalFound,
		"new":        result.New,
		"duplicates": result.Duplicates,
		"filtered":   result.Filtered,
		"by_group":   result.ByGroup,
		"by_source":  result.BySource,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	var req struct {
		UID     string `json:"uid"`
		MinDays int    `json:"min_days"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	s.bus.Reset()

	// A uid targets one registered link; otherwise the whole active set.
	if req.UID != "" {
		link, err := s.store.FindLink(req.UID)
		if err != nil {
			s.bus.Push("api extract", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if link == nil {
			s.writeJSON(w, http.StatusNotFound, map[string]any{"error": "link not found"})
			return
		}
		added, err := s.extractor.ExtractFromLink(r.Context(), link, req.MinDays)
		if err != nil {
			s.writeJSON(w, http.StatusOK, map[string]any{"items": 0, "status": "erro"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"items": added, "status": "ok"})
		return
	}

	result, err := s.extractor.ExtractFromLinks(r.Context(), req.MinDays, nil)
	if err != nil {
		s.bus.Push("api extract", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"processed": result.Processed,
		"items":     result.Items,
	})
}

func (s *Server) handleDiagProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	type diag struct {
		Name  string `json:"name"`
		Group string `json:"group"`
	}
	var providers []diag
	for _, p := range s.registry.Providers() {
		providers = append(providers, diag{Name: p.Name(), Group: p.Group()})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
		"groups":    s.registry.AvailableGroups(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := s.store.LogsTail(limit)
	if err != nil {
		s.bus.Push("api logs", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": rows})
}

func validStatus(status string) bool {
	for _, s := range item.StatusChoices {
		if s == status {
			return true
		}
	}
	return false
}
