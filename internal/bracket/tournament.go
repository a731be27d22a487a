package bracket

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/utils"
)

// Status is the lifecycle state of a tournament. The zero value is not a valid
// status, so a snapshot that never went through NewTournament or decoding is rejected.
type Status int

const (
	StatusUpcoming Status = iota + 1
	StatusOngoing
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusUpcoming:  "upcoming",
	StatusOngoing:   "ongoing",
	StatusCompleted: "completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func ParseStatus(v string) (Status, error) {
	for s, name := range statusNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown tournament status %q", v)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid tournament status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status as its lowercase token.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid tournament status %d", int(s))
	}
	return s.String(), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into tournament status", src)
	}
}

type Tournament struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	Date            time.Time `db:"date" json:"date"`
	MaxParticipants int       `db:"max_participants" json:"maxParticipants"`
	Status          Status    `db:"status" json:"status"`
	ClubID          string    `db:"club_id" json:"clubId"`
	Winner          *string   `db:"winner" json:"winner,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`

	// Join order is seeding order
	Participants []string `db:"-" json:"participants"`
	Matches      []Match  `db:"-" json:"matches"`
}

// Clone returns a deep copy so engine operations never alias the caller's snapshot.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Winner = utils.Clone(t.Winner)
	c.Participants = append([]string{}, t.Participants...)
	c.Matches = cloneMatches(t.Matches)
	return &c
}

func (t *Tournament) HasParticipant(name string) bool {
	for _, p := range t.Participants {
		if p == name {
			return true
		}
	}
	return false
}

func (t *Tournament) IsFull() bool {
	return len(t.Participants) >= t.MaxParticipants
}
