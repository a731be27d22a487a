package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrNotFound, http.StatusNotFound},
		{bracket.ErrMatchNotFound, http.StatusNotFound},
		{bracket.ErrInvalidWinner, http.StatusBadRequest},
		{bracket.ErrDuplicateParticipant, http.StatusBadRequest},
		{bracket.ErrInvalidParticipant, http.StatusBadRequest},
		{bracket.ErrInvalidTournament, http.StatusBadRequest},
		{bracket.ErrTournamentFull, http.StatusConflict},
		{bracket.ErrInsufficientParticipants, http.StatusConflict},
		{bracket.ErrIllegalStateTransition, http.StatusConflict},
		{store.ErrAlreadyExists, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.Equal(t, tt.want, StatusFor(wrapped))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("client error echoes message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, "record winner", fmt.Errorf("%w: Z is not playing", bracket.ErrInvalidWinner))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, "Z is not playing")
	})

	t.Run("server error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, "save tournament", errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"Alice"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"syntax", `{"name":}`, "badly-formed JSON"},
		{"truncated", `{"name":"Al`, "badly-formed JSON"},
		{"wrong type", `{"name":5}`, `incorrect JSON type for field "name"`},
		{"unknown field", `{"nick":"A"}`, `unknown key "nick"`},
		{"two values", `{"name":"A"}{"name":"B"}`, "single JSON value"},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, "must not be larger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := ReadJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Alice", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
