package grader

import (
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/join"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/oddsmath"
)

// MLPricePolicy controls the assumed moneyline price when a bet carries no
// recorded odds
type MLPricePolicy string

const (
	MLPolicyEven MLPricePolicy = "even" // assume +100
	MLPolicyPWin MLPricePolicy = "pwin" // derive from the edge's win probability
	MLPolicyNone MLPricePolicy = "none" // grade the result, zero profit
)

// Policy holds the era and pricing defaults applied at settlement.
// It is passed explicitly to every entry point; the grader keeps no state.
type Policy struct {
	// Earliest season with assumed spread/total line coverage
	OddsCoverageStartsYear int

	// Price assumed for covered-era spread/total bets with no recorded price
	SpreadTotalDefaultPrice int

	// Moneyline missing-price behavior
	AssumeMLPrice MLPricePolicy
}

// DefaultPolicy returns the standard settlement policy
func DefaultPolicy() Policy {
	return Policy{
		OddsCoverageStartsYear:  2006,
		SpreadTotalDefaultPrice: -110,
		AssumeMLPrice:           MLPolicyEven,
	}
}

// Settle grades a batch of rows. Rows are independent; order never affects
// per-row results. The grader performs no I/O and is deterministic given
// inputs and policy.
func Settle(rows []*models.BetRow, p Policy) []models.SettledBet {
	out := make([]models.SettledBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, Grade(row, p))
	}
	return out
}

// Grade settles a single row into {result, unit profit}. Data-quality
// problems produce VOID annotations, never errors: batch grading is total.
func Grade(row *models.BetRow, p Policy) models.SettledBet {
	settled := models.SettledBet{
		BetRow:        *row,
		Result:        models.ResultVoid,
		CoverageScope: coverageScope(row, p),
	}

	var result models.Result
	switch row.Market {
	case models.MarketH2H:
		result = gradeH2H(row)
	case models.MarketSpreads:
		result = gradeSpread(row)
	case models.MarketTotals:
		result = gradeTotal(row)
	default:
		// Non-canonical market after normalization
		return settled
	}

	settled.Result = result
	settled.UnitProfit = profit(row, result, p)
	return settled
}

// coverageScope marks rows from seasons before assumed line coverage
func coverageScope(row *models.BetRow, p Policy) models.CoverageScope {
	season := effectiveSeason(row)
	if season > 0 && season < p.OddsCoverageStartsYear {
		return models.CoveragePre
	}
	return models.CoverageFull
}

// effectiveSeason prefers the edge's declared season, approximating from the
// event date when the season is unknown
func effectiveSeason(row *models.BetRow) int {
	if row.Edge.Season > 0 {
		return row.Edge.Season
	}
	return join.SeasonOfDate(row.DateISO)
}

// gradeH2H settles a moneyline: winner takes it, ties push
func gradeH2H(row *models.BetRow) models.Result {
	if row.HomeScore == nil || row.AwayScore == nil {
		return models.ResultVoid
	}
	if row.Side != models.SideHome && row.Side != models.SideAway {
		return models.ResultVoid
	}

	home, away := *row.HomeScore, *row.AwayScore
	if home == away {
		return models.ResultPush
	}

	var winner models.Side
	if home > away {
		winner = models.SideHome
	} else {
		winner = models.SideAway
	}

	if row.Side == winner {
		return models.ResultWin
	}
	return models.ResultLoss
}

// gradeSpread settles against the picked team's handicap. The picked team
// covers iff its margin plus its signed line is positive; zero pushes.
func gradeSpread(row *models.BetRow) models.Result {
	if row.HomeScore == nil || row.AwayScore == nil {
		return models.ResultVoid
	}
	if row.Side != models.SideHome && row.Side != models.SideAway {
		return models.ResultVoid
	}

	line := spreadTotalLine(row)
	if line == nil {
		return models.ResultVoid
	}

	margin := float64(*row.HomeScore - *row.AwayScore)
	if row.Side == models.SideAway {
		margin = -margin
	}

	adjusted := margin + *line
	switch {
	case adjusted > 0:
		return models.ResultWin
	case adjusted < 0:
		return models.ResultLoss
	}
	return models.ResultPush
}

// gradeTotal settles over/under against the combined score
func gradeTotal(row *models.BetRow) models.Result {
	if row.HomeScore == nil || row.AwayScore == nil {
		return models.ResultVoid
	}
	if row.Side != models.SideOver && row.Side != models.SideUnder {
		return models.ResultVoid
	}

	line := spreadTotalLine(row)
	if line == nil {
		return models.ResultVoid
	}

	total := float64(*row.HomeScore + *row.AwayScore)
	switch {
	case total == *line:
		return models.ResultPush
	case (row.Side == models.SideOver) == (total > *line):
		return models.ResultWin
	}
	return models.ResultLoss
}

// spreadTotalLine prefers the edge's declared line, falling back to the
// line attached from the odds join. No default exists for a missing line
// in any era.
func spreadTotalLine(row *models.BetRow) *float64 {
	if row.Edge.Line != nil {
		return row.Edge.Line
	}
	return row.LineUsed
}

// profit computes per-unit profit for the graded result. PUSH and VOID pay
// zero. Missing prices fall back per policy: covered-era spreads/totals get
// the configured default, moneylines follow the configured assumption.
func profit(row *models.BetRow, result models.Result, p Policy) float64 {
	if result != models.ResultWin && result != models.ResultLoss {
		return 0
	}
	if result == models.ResultLoss {
		return -1
	}

	price := gradePrice(row)
	if price == 0 {
		switch row.Market {
		case models.MarketSpreads, models.MarketTotals:
			if effectiveSeason(row) >= p.OddsCoverageStartsYear {
				price = p.SpreadTotalDefaultPrice
			}
		case models.MarketH2H:
			switch p.AssumeMLPrice {
			case MLPolicyEven:
				price = 100
			case MLPolicyPWin:
				if row.Edge.PWin != nil {
					if derived, err := oddsmath.ProbabilityToAmerican(*row.Edge.PWin); err == nil {
						price = derived
					}
				}
			}
		}
	}

	if price == 0 {
		return 0
	}

	unit, err := oddsmath.ProfitPerUnit(price)
	if err != nil {
		return 0
	}
	return unit
}

// gradePrice picks the price to settle at: the edge's own odds first, then
// the price attached from the odds join
func gradePrice(row *models.BetRow) int {
	if oddsmath.IsValidAmerican(row.Edge.OddsAmerican) {
		return row.Edge.OddsAmerican
	}
	if row.PriceUsed != nil && oddsmath.IsValidAmerican(*row.PriceUsed) {
		return *row.PriceUsed
	}
	return 0
}
