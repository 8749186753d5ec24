package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/csvsearch/internal/core"
	"github.com/JonMunkholm/csvsearch/internal/logging"
)

// handleLoadCSV registers a file for viewing and searching.
// GET /loadcsv?filepath=data/resources/stars/ten-star.csv
func (s *Server) handleLoadCSV(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("filepath")

	f, err := s.service.LoadFile(r.Context(), path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "file", f.Name, "id", f.ID).Info("file loaded")
	respondSuccess(w, map[string]any{
		"filepath": f.Path,
		"filename": f.Name,
		"id":       f.ID,
		"loadedAt": f.LoadedAt,
	})
}

// handleViewCSV returns a loaded file's rows, optionally as typed records.
// GET /viewcsv?filename=ten-star&record=star&header=true
func (s *Server) handleViewCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	header, err := boolParam(q.Get("header"), "header")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.View(r.Context(), q.Get("filename"), q.Get("record"), header)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, map[string]any{
		"filename": res.File.Name,
		"record":   res.Kind,
		"rows":     res.Rows,
		"data":     res.Data,
	})
}

// handleSearchCSV searches a loaded file.
// GET /searchcsv?filename=students&ifHeader=true&searchKey=Alice&columnID=2
func (s *Server) handleSearchCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	header, err := boolParam(q.Get("ifHeader"), "ifHeader")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Search(r.Context(), core.SearchRequest{
		File:      q.Get("filename"),
		HasHeader: header,
		Value:     q.Get("searchKey"),
		Column:    q.Get("columnID"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, res)
}

// handleBroadband reports broadband coverage for a county.
// GET /broadband?state=Rhode Island&county=Kent County
func (s *Server) handleBroadband(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state, county := q.Get("state"), q.Get("county")
	if state == "" {
		s.respondError(w, r, fmt.Errorf("%w: state", core.ErrMissingParameter))
		return
	}
	if county == "" {
		s.respondError(w, r, fmt.Errorf("%w: county", core.ErrMissingParameter))
		return
	}

	bb, err := s.service.Broadband(r.Context(), state, county)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, map[string]any{
		"name":        bb.Name,
		"broadband":   bb.Percent,
		"state code":  bb.StateCode,
		"county code": bb.CountyCode,
		"date":        bb.RetrievedAt.Format(time.RFC3339),
	})
}

// handleCache dumps cache contents and counters.
func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, s.service.CacheReport())
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]any{"files": s.service.LoadedFiles()})
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]any{"kinds": core.Kinds()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.service.Limiter().Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"parses": status,
	})
}

// boolParam parses an optional boolean query parameter; empty is false.
func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", core.ErrInvalidParameter, name, v)
	}
	return b, nil
}
