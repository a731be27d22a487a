package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/httputil"
	"github.com/AdamBeresnev/club-bracket/internal/live"
	"github.com/AdamBeresnev/club-bracket/internal/middleware"
	"github.com/AdamBeresnev/club-bracket/internal/service"
	"github.com/AdamBeresnev/club-bracket/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type application struct {
	services    *service.Services
	sessions    *scs.SessionManager
	hub         *live.Hub
	corsOrigins []string
}

type createTournamentRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Date            eventDate `json:"date"`
	MaxParticipants int       `json:"maxParticipants"`
	ClubID          string    `json:"clubId"`
}

// Browsers submit datetime-local inputs without an offset, those are read as UTC.
var eventDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

type eventDate struct {
	time.Time
}

func (d *eventDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date %q is not an ISO-8601 date-time", raw)
}

type joinRequest struct {
	Name string `json:"name"`
}

type bulkJoinRequest struct {
	Names string `json:"names"`
}

type winnerRequest struct {
	Winner string `json:"winner"`
}

type clubRequest struct {
	ClubID string `json:"clubId"`
}

func respond(w http.ResponseWriter, status int, data any) {
	// Headers are already out by the time a write fails
	if err := httputil.WriteJSON(w, status, data); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Websocket upgrades need the raw connection, so the session middleware
		// stays off this route
		r.Get("/tournaments/{id}/live", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, err := app.services.Tournaments.GetTournament(r.Context(), id); err != nil {
				httputil.WriteError(w, "Failed to get tournament", err)
				return
			}
			app.hub.ServeWS(w, r, id)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.sessions.LoadAndSave)
			r.Use(middleware.LoadClub(app.sessions))

			r.Put("/session/club", func(w http.ResponseWriter, r *http.Request) {
				var req clubRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				if err := middleware.SetClub(r.Context(), app.sessions, req.ClubID); err != nil {
					httputil.InternalServerError(w, "Failed to update session", err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
				clubID := strings.TrimSpace(r.URL.Query().Get("clubId"))
				tournaments, err := app.services.Tournaments.ListTournaments(r.Context(), clubID)
				if err != nil {
					httputil.WriteError(w, "Failed to list tournaments", err)
					return
				}
				respond(w, http.StatusOK, tournaments)
			})

			r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
				var req createTournamentRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}

				clubID := strings.TrimSpace(req.ClubID)
				if clubID == "" {
					clubID, _ = middleware.GetClubIDFromContext(r.Context())
				}

				tournament, err := app.services.Tournaments.CreateTournament(r.Context(), service.CreateTournamentInput{
					Name:            req.Name,
					Description:     req.Description,
					Date:            req.Date.Time,
					MaxParticipants: req.MaxParticipants,
					ClubID:          clubID,
				})
				if err != nil {
					httputil.WriteError(w, "Failed to create tournament", err)
					return
				}
				w.Header().Set("Location", "/api/tournaments/"+tournament.ID)
				respond(w, http.StatusCreated, tournament)
			})

			r.Route("/tournaments/{id}", func(r chi.Router) {
				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.services.Tournaments.GetTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						httputil.WriteError(w, "Failed to get tournament", err)
						return
					}
					respond(w, http.StatusOK, tournament)
				})

				r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.services.Tournaments.GetTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						httputil.WriteError(w, "Failed to get tournament", err)
						return
					}
					respond(w, http.StatusOK, views.PrepareBracketData(tournament))
				})

				r.Post("/join", func(w http.ResponseWriter, r *http.Request) {
					var req joinRequest
					if err := httputil.ReadJSON(w, r, &req); err != nil {
						httputil.BadRequest(w, err.Error(), err)
						return
					}
					tournament, err := app.services.Tournaments.JoinTournament(r.Context(), chi.URLParam(r, "id"), req.Name)
					if err != nil {
						httputil.WriteError(w, "Failed to join tournament", err)
						return
					}
					respond(w, http.StatusOK, tournament)
				})

				r.Post("/participants", func(w http.ResponseWriter, r *http.Request) {
					var req bulkJoinRequest
					if err := httputil.ReadJSON(w, r, &req); err != nil {
						httputil.BadRequest(w, err.Error(), err)
						return
					}
					tournament, err := app.services.Participants.JoinMany(r.Context(), chi.URLParam(r, "id"), req.Names)
					if err != nil {
						httputil.WriteError(w, "Failed to add participants", err)
						return
					}
					respond(w, http.StatusOK, tournament)
				})

				r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.services.Tournaments.StartTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						httputil.WriteError(w, "Failed to start tournament", err)
						return
					}
					respond(w, http.StatusOK, tournament)
				})

				r.Get("/match/{matchId}", func(w http.ResponseWriter, r *http.Request) {
					data, err := app.services.Matches.GetMatchViewData(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "matchId"))
					if err != nil {
						httputil.WriteError(w, "Failed to get match data", err)
						return
					}
					respond(w, http.StatusOK, data)
				})

				r.Post("/match/{matchId}/winner", func(w http.ResponseWriter, r *http.Request) {
					var req winnerRequest
					if err := httputil.ReadJSON(w, r, &req); err != nil {
						httputil.BadRequest(w, err.Error(), err)
						return
					}
					tournament, err := app.services.Matches.RecordWinner(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "matchId"), req.Winner)
					if err != nil {
						httputil.WriteError(w, "Failed to record winner", err)
						return
					}
					respond(w, http.StatusOK, tournament)
				})
			})
		})
	})

	return r
}
