package aggregate

import (
	"sort"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// Record is a win/loss/push tally with profit over the group
type Record struct {
	Bets      int     `json:"bets"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Pushes    int     `json:"pushes"`
	Voids     int     `json:"voids"`
	Profit    float64 `json:"profit"`
	ROIPerBet float64 `json:"roi_per_bet"`

	// GradedRate is the fraction of bets that settled non-VOID, the direct
	// coverage metric for the group
	GradedRate float64 `json:"graded_rate"`
}

// MarketSummary is the per-market settlement record
type MarketSummary struct {
	Market models.Market `json:"market"`
	Record
}

// TeamSummary groups settled bets by picked team. Totals bets bucket under
// OVER and UNDER.
type TeamSummary struct {
	Team string `json:"team"`
	Record
}

// BankrollPoint is one point of the bankroll curve
type BankrollPoint struct {
	DateISO  string  `json:"date_iso"`
	Bankroll float64 `json:"bankroll"`
}

// WeeklyROI is return on stake for one ISO week, over closed bets only
type WeeklyROI struct {
	Year   int     `json:"year"`
	Week   int     `json:"week"`
	Bets   int     `json:"bets"`
	Staked float64 `json:"staked"`
	Profit float64 `json:"profit"`
	ROI    float64 `json:"roi"`
}

func (r *Record) add(b models.SettledBet) {
	r.Bets++
	switch b.Result {
	case models.ResultWin:
		r.Wins++
	case models.ResultLoss:
		r.Losses++
	case models.ResultPush:
		r.Pushes++
	case models.ResultVoid:
		r.Voids++
	}
	r.Profit += b.UnitProfit * b.Edge.Stake
}

func (r *Record) finish() {
	if r.Bets > 0 {
		r.ROIPerBet = r.Profit / float64(r.Bets)
		r.GradedRate = float64(r.Bets-r.Voids) / float64(r.Bets)
	}
}

// ByMarket tallies settled bets per market
func ByMarket(bets []models.SettledBet) []MarketSummary {
	byMarket := make(map[models.Market]*Record)
	for _, b := range bets {
		rec, ok := byMarket[b.Market]
		if !ok {
			rec = &Record{}
			byMarket[b.Market] = rec
		}
		rec.add(b)
	}

	out := make([]MarketSummary, 0, len(byMarket))
	for m, rec := range byMarket {
		rec.finish()
		out = append(out, MarketSummary{Market: m, Record: *rec})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Market < out[j].Market })
	return out
}

// ByTeam tallies settled bets per picked team
func ByTeam(bets []models.SettledBet) []TeamSummary {
	byTeam := make(map[string]*Record)
	for _, b := range bets {
		team := b.PickNick
		if team == "" {
			continue
		}
		rec, ok := byTeam[team]
		if !ok {
			rec = &Record{}
			byTeam[team] = rec
		}
		rec.add(b)
	}

	out := make([]TeamSummary, 0, len(byTeam))
	for team, rec := range byTeam {
		rec.finish()
		out = append(out, TeamSummary{Team: team, Record: *rec})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}

// BankrollCurve computes the running bankroll over bets sorted by date.
// The sort is stable, so same-day bets keep input order. Dateless bets are
// skipped; one point is emitted per date.
func BankrollCurve(bets []models.SettledBet, startingBankroll float64) []BankrollPoint {
	dated := make([]models.SettledBet, 0, len(bets))
	for _, b := range bets {
		if b.DateISO != "" {
			dated = append(dated, b)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool { return dated[i].DateISO < dated[j].DateISO })

	bankroll := startingBankroll
	var curve []BankrollPoint
	for _, b := range dated {
		bankroll += b.UnitProfit * b.Edge.Stake
		if n := len(curve); n > 0 && curve[n-1].DateISO == b.DateISO {
			curve[n-1].Bankroll = bankroll
			continue
		}
		curve = append(curve, BankrollPoint{DateISO: b.DateISO, Bankroll: bankroll})
	}

	return curve
}

// WeeklyROIs groups closed (non-VOID) bets by ISO week of their date
func WeeklyROIs(bets []models.SettledBet) []WeeklyROI {
	type yw struct{ year, week int }
	byWeek := make(map[yw]*WeeklyROI)

	for _, b := range bets {
		if b.Result == models.ResultVoid || b.DateISO == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", b.DateISO)
		if err != nil {
			continue
		}

		year, week := t.ISOWeek()
		k := yw{year, week}
		w, ok := byWeek[k]
		if !ok {
			w = &WeeklyROI{Year: year, Week: week}
			byWeek[k] = w
		}
		w.Bets++
		w.Staked += b.Edge.Stake
		w.Profit += b.UnitProfit * b.Edge.Stake
	}

	out := make([]WeeklyROI, 0, len(byWeek))
	for _, w := range byWeek {
		if w.Staked > 0 {
			w.ROI = w.Profit / w.Staked
		}
		out = append(out, *w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}
