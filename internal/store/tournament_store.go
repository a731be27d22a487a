package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/jmoiron/sqlx"
)

// TournamentStore keeps snapshots in SQL. A save rewrites the tournament row and
// replaces its participants and matches inside one transaction.
type TournamentStore struct {
	db *sqlx.DB
}

type participantRow struct {
	TournamentID string `db:"tournament_id"`
	Name         string `db:"name"`
	Seed         int    `db:"seed"`
}

type matchRow struct {
	TournamentID string `db:"tournament_id"`
	bracket.Match
}

const (
	insertTournamentQuery = `
		INSERT INTO tournaments (id, name, description, date, max_participants, status, club_id, winner, created_at, updated_at)
		VALUES (:id, :name, :description, :date, :max_participants, :status, :club_id, :winner, :created_at, :updated_at)
	`
	updateTournamentQuery = `
		UPDATE tournaments SET
		name = :name,
		description = :description,
		date = :date,
		max_participants = :max_participants,
		status = :status,
		club_id = :club_id,
		winner = :winner,
		updated_at = :updated_at
		WHERE id = :id
	`
	insertParticipantsQuery = `INSERT INTO participants (tournament_id, name, seed) VALUES (:tournament_id, :name, :seed)`
	insertMatchesQuery      = `
		INSERT INTO matches (id, tournament_id, round, match_number, player1, player2, winner)
		VALUES (:id, :tournament_id, :round, :match_number, :player1, :player2, :winner)
	`
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertTournamentQuery, tournament); err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	if err := s.insertChildren(ctx, tx, tournament); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *TournamentStore) SaveTournament(ctx context.Context, tournament *bracket.Tournament) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, updateTournamentQuery, tournament)
	if err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, tournament.ID)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournament.ID); err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM participants WHERE tournament_id = ?"), tournament.ID); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if err := s.insertChildren(ctx, tx, tournament); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *TournamentStore) insertChildren(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	if len(tournament.Participants) > 0 {
		rows := make([]participantRow, len(tournament.Participants))
		for i, name := range tournament.Participants {
			rows[i] = participantRow{TournamentID: tournament.ID, Name: name, Seed: i + 1}
		}
		if _, err := tx.NamedExecContext(ctx, insertParticipantsQuery, rows); err != nil {
			return fmt.Errorf("insert participants: %w", err)
		}
	}

	if len(tournament.Matches) > 0 {
		rows := make([]matchRow, len(tournament.Matches))
		for i, m := range tournament.Matches {
			rows[i] = matchRow{TournamentID: tournament.ID, Match: m}
		}
		if _, err := tx.NamedExecContext(ctx, insertMatchesQuery, rows); err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
	}
	return nil
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, s.db.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	tournaments := []bracket.Tournament{tournament}
	if err := s.loadChildren(ctx, tournaments); err != nil {
		return nil, err
	}
	return &tournaments[0], nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, clubID string) ([]bracket.Tournament, error) {
	tournaments := []bracket.Tournament{}
	var err error
	if clubID == "" {
		err = s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC, id ASC")
	} else {
		err = s.db.SelectContext(ctx, &tournaments, s.db.Rebind("SELECT * FROM tournaments WHERE club_id = ? ORDER BY created_at DESC, id ASC"), clubID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// loadChildren fills participants and matches for all tournaments with one query each.
func (s *TournamentStore) loadChildren(ctx context.Context, tournaments []bracket.Tournament) error {
	if len(tournaments) == 0 {
		return nil
	}

	index := make(map[string]int, len(tournaments))
	ids := make([]string, len(tournaments))
	for i := range tournaments {
		index[tournaments[i].ID] = i
		ids[i] = tournaments[i].ID
		tournaments[i].Participants = []string{}
		tournaments[i].Matches = []bracket.Match{}
	}

	query, args, err := sqlx.In("SELECT * FROM participants WHERE tournament_id IN (?) ORDER BY tournament_id, seed ASC", ids)
	if err != nil {
		return err
	}
	var participants []participantRow
	if err := s.db.SelectContext(ctx, &participants, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("select participants: %w", err)
	}
	for _, p := range participants {
		t := &tournaments[index[p.TournamentID]]
		t.Participants = append(t.Participants, p.Name)
	}

	query, args, err = sqlx.In("SELECT * FROM matches WHERE tournament_id IN (?) ORDER BY tournament_id, round ASC, match_number ASC", ids)
	if err != nil {
		return err
	}
	var matches []matchRow
	if err := s.db.SelectContext(ctx, &matches, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("select matches: %w", err)
	}
	for _, m := range matches {
		t := &tournaments[index[m.TournamentID]]
		t.Matches = append(t.Matches, m.Match)
	}

	return nil
}
