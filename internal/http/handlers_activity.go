package http

import (
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type activityList struct {
	Activity []storage.Activity `json:"activity"`
	Count    int                `json:"count"`
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalInt(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n := defaultActivityLimit
	if limit != nil {
		if *limit < 1 || *limit > maxActivityLimit {
			writeError(w, r, core.InvalidArgument("limit must be between 1 and %d", maxActivityLimit))
			return
		}
		n = *limit
	}

	entries, err := s.deps.Activity.ListActivity(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityList{Activity: entries, Count: len(entries)})
}
