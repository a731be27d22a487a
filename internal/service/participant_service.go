package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/events"
	"github.com/AdamBeresnev/club-bracket/internal/utils"
)

type ParticipantService struct {
	*core
}

// ParseNames splits newline-separated input, dropping blank lines.
func ParseNames(input string) []string {
	var names []string
	for _, line := range strings.Split(input, "\n") {
		if name := utils.StringOrNil(line); name != nil {
			names = append(names, *name)
		}
	}
	return names
}

// JoinMany registers every name in input order. It is all or nothing: one bad
// name leaves the tournament untouched.
func (s *ParticipantService) JoinMany(ctx context.Context, tournamentID, input string) (*bracket.Tournament, error) {
	names := ParseNames(input)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no names given", bracket.ErrInvalidParticipant)
	}

	return s.update(ctx, tournamentID, fixedEvent(events.TypeJoined), func(t *bracket.Tournament) (*bracket.Tournament, error) {
		var err error
		for _, name := range names {
			if t, err = bracket.Join(t, name); err != nil {
				return nil, err
			}
		}
		return t, nil
	})
}
