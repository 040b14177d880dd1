package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/nlq"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("httpapi").Debugw("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeStoreError maps missing data to 404 and keeps internal fault text
// out of responses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if statstore.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Errorw("request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", RequestID(r.Context()),
	)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, nlq.ErrorEnvelope("", "Request body must be JSON with a query field."))
		return
	}

	// The engine folds every outcome into an envelope; the handler only
	// picks the status code.
	env := s.backend.ProcessQuery(r.Context(), req.Query)
	status := http.StatusOK
	if strings.TrimSpace(req.Query) == "" {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, env)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Ping(r.Context()); err != nil {
		s.log.Warnw("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unhealthy", Database: "disconnected"})
		return
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "healthy", Database: "connected"})
}

func (s *Server) handlePlayerSeason(w http.ResponseWriter, r *http.Request) {
	line, err := s.backend.PlayerSeasonStats(r.Context(), r.PathValue("name"), r.PathValue("season"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apptype.PlayerStatsResult{Stats: line})
}

func (s *Server) handlePlayerAllSeasons(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	lines, err := s.backend.PlayerAllSeasons(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Name    string                     `json:"name"`
		Seasons []apptype.PlayerSeasonLine `json:"seasons"`
	}{Name: name, Seasons: lines})
}

func (s *Server) handleComparePlayers(w http.ResponseWriter, r *http.Request) {
	season := r.PathValue("season")
	line1, err := s.backend.PlayerSeasonStats(r.Context(), r.PathValue("a"), season)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	line2, err := s.backend.PlayerSeasonStats(r.Context(), r.PathValue("b"), season)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apptype.PlayerComparison{Season: season, Player1: line1, Player2: line2})
}

func (s *Server) handleHeadToHead(w http.ResponseWriter, r *http.Request) {
	player1, player2 := r.PathValue("a"), r.PathValue("b")
	season := r.URL.Query().Get("season")
	lastN, ok := s.intQuery(w, r, "last_n")
	if !ok {
		return
	}

	logs, err := s.backend.HeadToHeadGameLogs(r.Context(), player1, player2, season, lastN)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if len(logs) == 0 {
		s.writeError(w, http.StatusNotFound, "no head-to-head games found for "+player1+" and "+player2)
		return
	}
	writeJSON(w, http.StatusOK, apptype.HeadToHeadResult{
		Player1:  player1,
		Player2:  player2,
		Season:   season,
		LastN:    lastN,
		GameLogs: logs,
	})
}

func (s *Server) handleCompareTeams(w http.ResponseWriter, r *http.Request) {
	includeLogs := false
	if raw := r.URL.Query().Get("include_game_logs"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "include_game_logs must be a boolean")
			return
		}
		includeLogs = v
	}
	lastN, ok := s.intQuery(w, r, "last_n")
	if !ok {
		return
	}

	cmp, err := s.backend.TeamSeasonComparison(r.Context(),
		r.PathValue("a"), r.PathValue("b"), r.PathValue("season"), includeLogs, lastN)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// intQuery parses an optional non-negative integer parameter. On a bad
// value it writes the 400 itself and reports ok=false.
func (s *Server) intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		s.writeError(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
