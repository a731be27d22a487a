package httputil

import (
	"errors"
	"net/http"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/store"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	log.Error().Err(err).Msg(msg)
	writeErrorBody(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusBadRequest, "bad request", msg, err)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusNotFound, "not found", msg, err)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusConflict, "conflict", msg, err)
}

func clientError(w http.ResponseWriter, status int, kind, msg string, err error) {
	event := log.Warn().Str("message", msg)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(kind)
	writeErrorBody(w, status, msg)
}

func writeErrorBody(w http.ResponseWriter, status int, msg string) {
	if err := WriteJSON(w, status, errorResponse{Error: msg}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}

// StatusFor maps domain and store errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, bracket.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrDuplicateParticipant),
		errors.Is(err, bracket.ErrInvalidParticipant),
		errors.Is(err, bracket.ErrInvalidTournament):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrTournamentFull),
		errors.Is(err, bracket.ErrInsufficientParticipants),
		errors.Is(err, bracket.ErrIllegalStateTransition),
		errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the status StatusFor picks. Client errors echo the error
// text, server errors are logged and hidden.
func WriteError(w http.ResponseWriter, msg string, err error) {
	switch StatusFor(err) {
	case http.StatusNotFound:
		NotFound(w, err.Error(), err)
	case http.StatusBadRequest:
		BadRequest(w, err.Error(), err)
	case http.StatusConflict:
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
