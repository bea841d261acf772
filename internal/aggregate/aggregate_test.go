package aggregate_test

import (
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/aggregate"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

func settled(date string, market models.Market, pick string, result models.Result, unitProfit, stake float64) models.SettledBet {
	return models.SettledBet{
		BetRow: models.BetRow{
			Edge:     models.Edge{Stake: stake},
			DateISO:  date,
			Market:   market,
			PickNick: pick,
		},
		Result:     result,
		UnitProfit: unitProfit,
	}
}

func TestByMarket(t *testing.T) {
	bets := []models.SettledBet{
		settled("2023-10-08", models.MarketH2H, "CHIEFS", models.ResultWin, 0.6667, 1),
		settled("2023-10-08", models.MarketH2H, "BILLS", models.ResultLoss, -1, 1),
		settled("2023-10-08", models.MarketSpreads, "EAGLES", models.ResultPush, 0, 1),
		settled("2023-10-08", models.MarketSpreads, "COWBOYS", models.ResultVoid, 0, 1),
	}

	out := aggregate.ByMarket(bets)
	if len(out) != 2 {
		t.Fatalf("got %d markets, want 2", len(out))
	}

	// Sorted by market name: H2H before SPREADS
	h2h := out[0]
	if h2h.Market != models.MarketH2H || h2h.Wins != 1 || h2h.Losses != 1 {
		t.Errorf("h2h record = %+v", h2h)
	}
	if math.Abs(h2h.Profit-(-0.3333)) > 0.0001 {
		t.Errorf("h2h profit = %f", h2h.Profit)
	}
	if h2h.GradedRate != 1.0 {
		t.Errorf("h2h graded rate = %f", h2h.GradedRate)
	}

	spreads := out[1]
	if spreads.Pushes != 1 || spreads.Voids != 1 {
		t.Errorf("spreads record = %+v", spreads)
	}
	if spreads.GradedRate != 0.5 {
		t.Errorf("spreads graded rate = %f, want 0.5", spreads.GradedRate)
	}
}

func TestByTeam(t *testing.T) {
	bets := []models.SettledBet{
		settled("2023-10-08", models.MarketH2H, "CHIEFS", models.ResultWin, 0.9091, 1),
		settled("2023-10-15", models.MarketSpreads, "CHIEFS", models.ResultLoss, -1, 1),
		settled("2023-10-08", models.MarketTotals, "OVER", models.ResultWin, 0.9091, 1),
		settled("2023-10-08", models.MarketH2H, "", models.ResultVoid, 0, 1),
	}

	out := aggregate.ByTeam(bets)
	if len(out) != 2 {
		t.Fatalf("got %d teams, want 2 (blank picks dropped)", len(out))
	}
	if out[0].Team != "CHIEFS" || out[0].Bets != 2 {
		t.Errorf("first team = %+v", out[0])
	}
	if out[1].Team != "OVER" || out[1].Wins != 1 {
		t.Errorf("second team = %+v", out[1])
	}
}

func TestBankrollCurve(t *testing.T) {
	bets := []models.SettledBet{
		settled("2023-10-15", models.MarketH2H, "CHIEFS", models.ResultLoss, -1, 2),
		settled("2023-10-08", models.MarketH2H, "BILLS", models.ResultWin, 1, 1),
		settled("2023-10-08", models.MarketSpreads, "EAGLES", models.ResultWin, 0.9091, 1),
		settled("", models.MarketH2H, "LIONS", models.ResultWin, 1, 1),
	}

	curve := aggregate.BankrollCurve(bets, 100)
	if len(curve) != 2 {
		t.Fatalf("got %d points, want one per date", len(curve))
	}
	if curve[0].DateISO != "2023-10-08" || curve[1].DateISO != "2023-10-15" {
		t.Errorf("curve out of date order: %+v", curve)
	}
	if math.Abs(curve[0].Bankroll-101.9091) > 0.0001 {
		t.Errorf("day one bankroll = %f", curve[0].Bankroll)
	}
	if math.Abs(curve[1].Bankroll-99.9091) > 0.0001 {
		t.Errorf("day two bankroll = %f (stake 2 loss)", curve[1].Bankroll)
	}
}

func TestWeeklyROIs(t *testing.T) {
	bets := []models.SettledBet{
		settled("2023-10-08", models.MarketH2H, "CHIEFS", models.ResultWin, 0.9091, 1),
		settled("2023-10-08", models.MarketH2H, "BILLS", models.ResultLoss, -1, 1),
		settled("2023-10-08", models.MarketH2H, "JETS", models.ResultVoid, 0, 1),
		settled("2023-10-15", models.MarketH2H, "EAGLES", models.ResultWin, 1, 2),
	}

	out := aggregate.WeeklyROIs(bets)
	if len(out) != 2 {
		t.Fatalf("got %d weeks, want 2", len(out))
	}

	w1 := out[0]
	if w1.Bets != 2 {
		t.Errorf("week one bets = %d, voids must not count", w1.Bets)
	}
	if math.Abs(w1.ROI-(-0.04545)) > 0.0001 {
		t.Errorf("week one roi = %f", w1.ROI)
	}

	w2 := out[1]
	if w2.Staked != 2 || math.Abs(w2.ROI-1.0) > 0.0001 {
		t.Errorf("week two = %+v", w2)
	}
}

func TestWeeklyROIsOrdering(t *testing.T) {
	bets := []models.SettledBet{
		settled("2024-01-14", models.MarketH2H, "CHIEFS", models.ResultWin, 1, 1),
		settled("2023-12-31", models.MarketH2H, "BILLS", models.ResultWin, 1, 1),
		settled("2023-09-10", models.MarketH2H, "JETS", models.ResultLoss, -1, 1),
	}

	out := aggregate.WeeklyROIs(bets)
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if prev.Year > cur.Year || (prev.Year == cur.Year && prev.Week > cur.Week) {
			t.Fatalf("weeks out of order: %+v", out)
		}
	}
}
