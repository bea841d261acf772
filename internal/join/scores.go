package join

import (
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// AttachScores joins final scores onto bet rows with a four-pass cascade:
// date+exact, date+swap, season-week+exact, season-week+swap. A row matched
// in an earlier pass is never revisited, so coverage is monotonic.
//
// Swap matches reorient the scores to the row's declared home/away; the
// row's side is never altered. Rows matched only by season-week with no
// date borrow the score's date so the odds join can still run.
func AttachScores(rows []*models.BetRow, scores []models.Score) {
	byStrict := make(map[string][]*models.Score)
	byPairSW := make(map[string][]*models.Score)

	for i := range scores {
		s := &scores[i]
		k := BuildKeys(s.DateISO, s.HomeNick, s.AwayNick, s.Season, s.Week)
		if k.StrictDate != "" {
			byStrict[k.StrictDate] = append(byStrict[k.StrictDate], s)
		}
		if k.PairSW != "" {
			byPairSW[k.PairSW] = append(byPairSW[k.PairSW], s)
		}
	}

	for _, row := range rows {
		if row.HomeNick == "" || row.AwayNick == "" {
			continue
		}

		k := BuildKeys(row.DateISO, row.HomeNick, row.AwayNick, row.Edge.Season, row.Edge.Week)

		// Pass A: exact date key
		if s := chooseScore(byStrict[k.StrictDate]); s != nil {
			applyScore(row, s, false, models.JoinDateExact)
			continue
		}

		// Pass B: swapped date key
		if s := chooseScore(byStrict[k.SwapDate]); s != nil {
			applyScore(row, s, true, models.JoinDateSwap)
			continue
		}

		// Pass C: season-week exact
		if s := chooseScore(byPairSW[k.PairSW]); s != nil {
			applyScore(row, s, false, models.JoinSWExact)
			continue
		}

		// Pass D: season-week swapped
		if s := chooseScore(byPairSW[k.PairSWSwap]); s != nil {
			applyScore(row, s, true, models.JoinSWSwap)
		}
	}
}

// chooseScore resolves join ties: prefer status=final rows, then the most
// recently captured. Never an error; ambiguity is resolved, not reported.
func chooseScore(candidates []*models.Score) *models.Score {
	var best *models.Score
	for _, s := range candidates {
		if best == nil {
			best = s
			continue
		}
		if betterScore(s, best) {
			best = s
		}
	}
	return best
}

func betterScore(a, b *models.Score) bool {
	aFinal := a.Status == models.StatusFinal
	bFinal := b.Status == models.StatusFinal
	if aFinal != bFinal {
		return aFinal
	}

	if a.CapturedAt != nil && b.CapturedAt != nil {
		return a.CapturedAt.After(*b.CapturedAt)
	}
	return a.CapturedAt != nil && b.CapturedAt == nil
}

// applyScore annotates the row, reorienting swapped matches so HomeScore is
// always the score of the row's declared home team
func applyScore(row *models.BetRow, s *models.Score, swapped bool, method models.JoinMethod) {
	// Scores are only trusted on final games
	if s.Status == "" || s.Status == models.StatusFinal {
		home, away := s.HomeScore, s.AwayScore
		if swapped {
			home, away = away, home
		}
		row.HomeScore = &home
		row.AwayScore = &away
	}

	row.JoinMethod = method

	// Date repair: season-week matches on dateless rows borrow the date
	if row.DateISO == "" && s.DateISO != "" {
		row.DateISO = s.DateISO
	}
}
