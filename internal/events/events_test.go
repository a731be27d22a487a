package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []published
	err      error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, published{subject: subj, data: data})
	return nil
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func testEvent(t *testing.T) Event {
	t.Helper()
	tournament, err := bracket.NewTournament(bracket.NewTournamentParams{
		ID:              "t-1",
		Name:            "Friday Cup",
		MaxParticipants: 4,
	})
	require.NoError(t, err)
	return Event{
		Type:         TypeCreated,
		TournamentID: tournament.ID,
		Tournament:   tournament,
		OccurredAt:   time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewNATSPublisher(conn, "clubs")
	event := testEvent(t)
	event.Type = TypeMatchDecided

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, conn.messages, 1)
	assert.Equal(t, "clubs.t-1.match_decided", conn.messages[0].subject)

	var decoded Event
	require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
	assert.Equal(t, TypeMatchDecided, decoded.Type)
	assert.Equal(t, "t-1", decoded.TournamentID)
	require.NotNil(t, decoded.Tournament)
	assert.Equal(t, bracket.StatusUpcoming, decoded.Tournament.Status)
}

func TestNATSPublisher_DefaultPrefix(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{}, "")
	assert.Equal(t, "tournaments.t-1.created", p.Subject(testEvent(t)))
}

func TestNATSPublisher_ConnError(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{err: errors.New("no servers available")}, "tournaments")

	err := p.Publish(context.Background(), testEvent(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tournaments.t-1.created")
}

func TestFanout(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("boom")}
	ok := &recordingPublisher{}
	fanout := Fanout{failing, LogPublisher{}, Discard{}, ok}

	err := fanout.Publish(context.Background(), testEvent(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	// A failing publisher does not stop the rest
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)

	assert.NoError(t, Fanout{}.Publish(context.Background(), testEvent(t)))
}
