package pipeline

import (
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/aggregate"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/grader"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/join"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/normalize"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/openclose"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/oddsmath"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/sports/football_nfl"
)

// Options configures one pipeline invocation. The zero value is not usable;
// call DefaultOptions.
type Options struct {
	Policy             grader.Policy
	Sport              *football_nfl.Config
	CloseBufferSeconds int
	StartingBankroll   float64
}

// DefaultOptions returns standard workbench settings
func DefaultOptions() Options {
	return Options{
		Policy:             grader.DefaultPolicy(),
		Sport:              football_nfl.DefaultConfig(),
		CloseBufferSeconds: 0,
		StartingBankroll:   1000,
	}
}

// RunSummary describes one settlement run
type RunSummary struct {
	RanAt        time.Time                 `json:"ran_at"`
	Bets         int                       `json:"bets"`
	ByResult     map[models.Result]int     `json:"by_result"`
	ByJoinMethod map[models.JoinMethod]int `json:"by_join_method"`
	TotalProfit  float64                   `json:"total_profit"`
	ElapsedMS    int64                     `json:"elapsed_ms"`
}

// Result is the full output of one run
type Result struct {
	Settled    []models.SettledBet       `json:"settled"`
	OpenCloses []models.OpenClose        `json:"open_closes"`
	Markets    []aggregate.MarketSummary `json:"markets"`
	Teams      []aggregate.TeamSummary   `json:"teams"`
	Bankroll   []aggregate.BankrollPoint `json:"bankroll"`
	Weekly     []aggregate.WeeklyROI     `json:"weekly"`
	Summary    RunSummary                `json:"summary"`
}

// Run executes the batch pipeline: normalize, attach scores, attach odds,
// grade, aggregate. All inputs are materialized in memory; the pipeline is
// single-threaded, synchronous, and mutates none of its inputs.
func Run(edges []models.Edge, scores []models.Score, snaps []models.LineSnapshot, opts Options) (*Result, error) {
	started := time.Now()

	if edges == nil {
		return nil, &models.SchemaError{Table: "edges", Column: "(table missing)"}
	}
	if err := validateEdges(edges); err != nil {
		return nil, err
	}

	rows := normalize.Edges(edges)
	cleanScores := normalize.Scores(scores)

	join.AttachScores(rows, cleanScores)

	openCloses := openclose.Build(snaps, opts.CloseBufferSeconds)
	oddsTable := join.NewOddsTable(opts.Sport, snaps, openCloses)
	oddsTable.Attach(rows)

	settled := grader.Settle(rows, opts.Policy)
	annotateCLV(settled, openCloses, opts.Sport)

	res := &Result{
		Settled:    settled,
		OpenCloses: openCloses,
		Markets:    aggregate.ByMarket(settled),
		Teams:      aggregate.ByTeam(settled),
		Bankroll:   aggregate.BankrollCurve(settled, opts.StartingBankroll),
		Weekly:     aggregate.WeeklyROIs(settled),
	}
	res.Summary = summarize(settled, started)

	fmt.Printf("[Pipeline] settled %d bets in %dms (win=%d loss=%d push=%d void=%d)\n",
		res.Summary.Bets, res.Summary.ElapsedMS,
		res.Summary.ByResult[models.ResultWin],
		res.Summary.ByResult[models.ResultLoss],
		res.Summary.ByResult[models.ResultPush],
		res.Summary.ByResult[models.ResultVoid])

	return res, nil
}

// FromSettled rebuilds a full Result from an already-settled table, used
// when the orchestrator's cache hits. Aggregates are recomputed; grading is
// not repeated.
func FromSettled(settled []models.SettledBet, snaps []models.LineSnapshot, opts Options) *Result {
	started := time.Now()

	res := &Result{
		Settled:    settled,
		OpenCloses: openclose.Build(snaps, opts.CloseBufferSeconds),
		Markets:    aggregate.ByMarket(settled),
		Teams:      aggregate.ByTeam(settled),
		Bankroll:   aggregate.BankrollCurve(settled, opts.StartingBankroll),
		Weekly:     aggregate.WeeklyROIs(settled),
	}
	res.Summary = summarize(settled, started)
	return res
}

// validateEdges surfaces schema-level problems: a field absent across the
// whole table means the upstream extract dropped the column. Per-row gaps
// are data quality, handled by VOID grades instead.
func validateEdges(edges []models.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	allHomeEmpty, allAwayEmpty, allMarketEmpty := true, true, true
	for _, e := range edges {
		if e.Home != "" {
			allHomeEmpty = false
		}
		if e.Away != "" {
			allAwayEmpty = false
		}
		if e.Market != "" {
			allMarketEmpty = false
		}
	}

	switch {
	case allHomeEmpty:
		return &models.SchemaError{Table: "edges", Column: "home"}
	case allAwayEmpty:
		return &models.SchemaError{Table: "edges", Column: "away"}
	case allMarketEmpty:
		return &models.SchemaError{Table: "edges", Column: "market"}
	}
	return nil
}

// annotateCLV records closing-line value against the best preferred book's
// close: implied(close) - implied(bet price). Positive CLV means the bet
// beat the close.
func annotateCLV(settled []models.SettledBet, openCloses []models.OpenClose, cfg *football_nfl.Config) {
	type ocKey struct {
		gameKey string
		market  models.Market
		side    models.Side
	}

	best := make(map[ocKey]*models.OpenClose)
	for i := range openCloses {
		oc := &openCloses[i]
		if !oc.HasClose || oc.ClosePrice == nil {
			continue
		}
		dateISO, home, away, ok := join.ParseGameKey(oc.GameKey)
		if !ok {
			continue
		}
		k := ocKey{join.GameKey(dateISO, home, away), oc.Market, oc.Side}
		if cur, exists := best[k]; !exists || cfg.BookRank(oc.Book) < cfg.BookRank(cur.Book) {
			best[k] = oc
		}
	}

	for i := range settled {
		b := &settled[i]
		price := b.Edge.OddsAmerican
		if !oddsmath.IsValidAmerican(price) {
			continue
		}

		k := ocKey{join.GameKey(b.DateISO, b.HomeNick, b.AwayNick), b.Market, b.Side}
		oc, ok := best[k]
		if !ok {
			continue
		}

		closeProb, err := oddsmath.AmericanToImpliedProbability(*oc.ClosePrice)
		if err != nil {
			continue
		}
		betProb, err := oddsmath.AmericanToImpliedProbability(price)
		if err != nil {
			continue
		}

		clv := closeProb - betProb
		b.CLV = &clv
	}
}

func summarize(settled []models.SettledBet, started time.Time) RunSummary {
	s := RunSummary{
		RanAt:        started,
		Bets:         len(settled),
		ByResult:     make(map[models.Result]int),
		ByJoinMethod: make(map[models.JoinMethod]int),
	}

	for _, b := range settled {
		s.ByResult[b.Result]++
		s.ByJoinMethod[b.JoinMethod]++
		s.TotalProfit += b.UnitProfit * b.Edge.Stake
	}

	s.ElapsedMS = time.Since(started).Milliseconds()
	return s
}
