package bracket

import "fmt"

// RoundLabel maps a round to a friendly name counted back from the final.
func RoundLabel(roundNumber, totalRounds int) string {
	switch totalRounds - roundNumber {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round %d", roundNumber)
	}
}
