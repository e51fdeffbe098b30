package server

import (
	"context"
	"net/http"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/payload"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Snapshots interface {
	WriteTemp(ctx context.Context) (path string, cleanup func(), err error)
	Upload(ctx context.Context) (key, location string, err error)
}

// RESTHandler serves the plain JSON routes existing clients post to.
type RESTHandler struct {
	matches   MatchSubmitter
	reader    Reader
	snapshots Snapshots
}

func NewRESTHandler(matches MatchSubmitter, reader Reader, snapshots Snapshots) *RESTHandler {
	return &RESTHandler{matches: matches, reader: reader, snapshots: snapshots}
}

func (h *RESTHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.createGame)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/history/{puuid}", h.history)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/by-puuid/{puuid}", h.profile)
		r.Patch("/tp-by-puuid/{puuid}", h.adjustTP)
	})

	r.Route("/debug", func(r chi.Router) {
		r.Get("/dump-db", h.dumpDB)
		r.Post("/snapshots", h.uploadSnapshot)
	})
}

func (h *RESTHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var game payload.Game
	if err := readJSON(w, r, &game); err != nil {
		errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.matches.SubmitMatch(r.Context(), game.ToSubmission())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Status == domain.StatusAlreadyRecorded {
		status = http.StatusOK
	}
	writeJSON(w, r, status, payload.FromMatchResult(result))
}

func (h *RESTHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reader.Leaderboard(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, payload.FromLeaderboard(entries).Entries)
}

func (h *RESTHandler) history(w http.ResponseWriter, r *http.Request) {
	puuid := chi.URLParam(r, "puuid")

	entries, err := h.reader.History(r.Context(), puuid)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, payload.FromHistory(puuid, entries).Matches)
}

func (h *RESTHandler) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.reader.Profile(r.Context(), chi.URLParam(r, "puuid"))
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, payload.FromProfile(profile))
}

func (h *RESTHandler) adjustTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TPChange *int `json:"tpChange"`
	}
	if err := readJSON(w, r, &body); err != nil {
		errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.TPChange == nil {
		errorResponse(w, r, http.StatusBadRequest, "tpChange is required")
		return
	}

	puuid := chi.URLParam(r, "puuid")
	tp, err := h.reader.AdjustTP(r.Context(), puuid, *body.TPChange)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, jsonResponse{"puuid": puuid, "tp": tp})
}

func (h *RESTHandler) dumpDB(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := h.snapshots.WriteTemp(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to snapshot database")
		errorResponse(w, r, http.StatusInternalServerError, "could not snapshot the database")
		return
	}
	defer cleanup()

	w.Header().Set("Content-Disposition", `attachment; filename="tengoku.db"`)
	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	http.ServeFile(w, r, path)
}

func (h *RESTHandler) uploadSnapshot(w http.ResponseWriter, r *http.Request) {
	key, location, err := h.snapshots.Upload(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, jsonResponse{"key": key, "location": location})
}
