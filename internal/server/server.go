// Package server exposes the reviewer UI and the JSON API over the
// collected opportunities.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/quintessa/grantwatch/internal/collect"
	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/extract"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/provider"
	"github.com/quintessa/grantwatch/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the reviewer UI and JSON API.
type Server struct {
	store     *store.Store
	bus       *errbus.Bus
	registry  *provider.Registry
	collector *collect.Collector
	extractor *extract.Extractor
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server.
func New(st *store.Store, bus *errbus.Bus, reg *provider.Registry, col *collect.Collector, ext *extract.Extractor) (*Server, error) {
	funcMap := template.FuncMap{
		"statusColor": func(status string) string {
			return item.StatusColors[status]
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page clones the base so it gets its own content/title blocks.
	pageNames := []string{"index.html", "links.html", "digest.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		store:     st,
		bus:       bus,
		registry:  reg,
		collector: col,
		extractor: ext,
		pages:     pages,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/links", s.handleLinksPage)
	s.mux.HandleFunc("/digest", s.handleDigest)

	s.mux.HandleFunc("/api/items", s.handleItems)
	s.mux.HandleFunc("/api/items/", s.handleItemByUID)
	s.mux.HandleFunc("/api/links", s.handleLinks)
	s.mux.HandleFunc("/api/links/", s.handleLinkByUID)
	s.mux.HandleFunc("/api/collect", s.handleCollect)
	s.mux.HandleFunc("/api/extract", s.handleExtract)
	s.mux.HandleFunc("/api/diag/providers", s.handleDiagProviders)
	s.mux.HandleFunc("/api/logs", s.handleLogs)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	items, err := s.itemMaps()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Items":    items,
		"Statuses": item.StatusChoices,
	})
}

func (s *Server) handleLinksPage(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ReadLinks()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "links.html", map[string]any{
		"Links":  links,
		"Groups": item.CanonicalGroups,
	})
}

// handleDigest renders the open opportunities as a markdown digest,
// grouped by category.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	items, err := s.itemMaps()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	buf.WriteString("# Oportunidades abertas\n")
	for _, group := range item.CanonicalGroups {
		var lines []string
		for _, it := range items {
			if it["group"] != group || it["do_not_show"] == "true" {
				continue
			}
			line := fmt.Sprintf("- [%s](%s)", it["title"], it["link"])
			if it["deadline_iso"] != "" {
				line += fmt.Sprintf(" — prazo %s", it["deadline_iso"])
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		buf.WriteString("\n## " + group + "\n\n")
		for _, l := range lines {
			buf.WriteString(l + "\n")
		}
	}

	var html bytes.Buffer
	if err := md.Convert(buf.Bytes(), &html); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "digest.html", map[string]any{
		"Digest": template.HTML(html.String()), //nolint: gosec
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

// itemMaps reads the items table as one map per row, keyed by column
// name.
func (s *Server) itemMaps() ([]map[string]string, error) {
	header, body, err := s.store.ReadItems()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(body))
	for _, row := range body {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			} else {
				m[col] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// Serve starts the HTTP server on the given port.
func Serve(st *store.Store, bus *errbus.Bus, reg *provider.Registry, col *collect.Collector, ext *extract.Extractor, port int) error {
	srv, err := New(st, bus, reg, col, ext)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
