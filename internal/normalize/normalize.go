package normalize

import (
	"strings"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/oddsmath"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/sports/football_nfl"
)

// marketSynonyms maps lowercased labels onto canonical market tokens
var marketSynonyms = map[string]models.Market{
	"h2h":          models.MarketH2H,
	"ml":           models.MarketH2H,
	"moneyline":    models.MarketH2H,
	"money line":   models.MarketH2H,
	"spread":       models.MarketSpreads,
	"spreads":      models.MarketSpreads,
	"point spread": models.MarketSpreads,
	"total":        models.MarketTotals,
	"totals":       models.MarketTotals,
	"over/under":   models.MarketTotals,
	"ou":           models.MarketTotals,
}

// Market normalizes a market label onto {H2H, SPREADS, TOTALS}. Unknown
// labels pass through uppercased; the grader voids anything non-canonical.
func Market(label string) models.Market {
	key := strings.ToLower(strings.TrimSpace(label))
	if m, ok := marketSynonyms[key]; ok {
		return m
	}
	return models.Market(strings.ToUpper(key))
}

// Side resolves a raw side value against the game's teams.
// Team names (or their nickname tokens) resolve to HOME/AWAY; O/OVER and
// U/UNDER resolve for totals. Unresolvable sides return "".
func Side(raw, homeNick, awayNick string, market models.Market) models.Side {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	switch trimmed {
	case "HOME", "H":
		return models.SideHome
	case "AWAY", "A":
		return models.SideAway
	case "OVER", "O":
		return models.SideOver
	case "UNDER", "U":
		return models.SideUnder
	}

	if market == models.MarketTotals {
		return ""
	}

	// Try as a team name
	nick := football_nfl.Nickify(raw)
	if nick == "" {
		return ""
	}
	if nick == homeNick {
		return models.SideHome
	}
	if nick == awayNick {
		return models.SideAway
	}

	return ""
}

// Edge canonicalizes one edge into a BetRow ready for the join cascade.
// Bad identifiers leave empty nicks or sides; the row survives and settles
// VOID downstream rather than erroring here.
func Edge(e models.Edge) *models.BetRow {
	row := &models.BetRow{
		Edge:       e,
		DateISO:    Date(e.DateISO),
		HomeNick:   football_nfl.Nickify(e.Home),
		AwayNick:   football_nfl.Nickify(e.Away),
		Market:     Market(e.Market),
		JoinMethod: models.JoinNone,
	}

	if row.Edge.Stake == 0 {
		row.Edge.Stake = 1.0
	}
	if !oddsmath.IsValidAmerican(row.Edge.OddsAmerican) {
		row.Edge.OddsAmerican = 0
	}

	row.Side = Side(e.Side, row.HomeNick, row.AwayNick, row.Market)
	row.PickNick = pickNick(row)

	return row
}

// Edges normalizes a batch of edges
func Edges(edges []models.Edge) []*models.BetRow {
	rows := make([]*models.BetRow, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, Edge(e))
	}
	return rows
}

// Score canonicalizes a score row in place (nicks and date)
func Score(s models.Score) models.Score {
	s.HomeNick = football_nfl.Nickify(s.Home)
	s.AwayNick = football_nfl.Nickify(s.Away)
	s.DateISO = Date(s.DateISO)
	return s
}

// Scores normalizes a batch of score rows, dropping self-joins (home == away)
func Scores(scores []models.Score) []models.Score {
	out := make([]models.Score, 0, len(scores))
	for _, s := range scores {
		n := Score(s)
		if n.HomeNick != "" && n.HomeNick == n.AwayNick {
			continue
		}
		out = append(out, n)
	}
	return out
}

// pickNick derives the picked-team bucket for aggregation
func pickNick(row *models.BetRow) string {
	switch row.Side {
	case models.SideHome:
		return row.HomeNick
	case models.SideAway:
		return row.AwayNick
	case models.SideOver:
		return string(models.SideOver)
	case models.SideUnder:
		return string(models.SideUnder)
	}
	return ""
}
