package bracket

import "errors"

var (
	ErrInsufficientParticipants = errors.New("at least 2 participants are required")
	ErrDuplicateParticipant     = errors.New("participant name is already taken")
	ErrInvalidParticipant       = errors.New("invalid participant name")
	ErrTournamentFull           = errors.New("tournament is full")
	ErrInvalidWinner            = errors.New("winner is not part of this match")
	ErrIllegalStateTransition   = errors.New("operation not allowed in current tournament state")
	ErrMatchNotFound            = errors.New("match not found")
	ErrInvalidTournament        = errors.New("invalid tournament")
)
