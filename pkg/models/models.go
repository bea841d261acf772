package models

import "time"

// Market identifies a betting market
type Market string

const (
	MarketH2H     Market = "H2H"     // moneyline
	MarketSpreads Market = "SPREADS" // point spread
	MarketTotals  Market = "TOTALS"  // over/under
)

// IsCanonical reports whether the market is one of the three graded markets
func (m Market) IsCanonical() bool {
	return m == MarketH2H || m == MarketSpreads || m == MarketTotals
}

// Side identifies a bet side after resolution
type Side string

const (
	SideHome  Side = "HOME"
	SideAway  Side = "AWAY"
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// Result is the settlement outcome of a bet
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultPush Result = "PUSH"
	ResultVoid Result = "VOID"
)

// JoinMethod records which join pass matched a bet to its game
type JoinMethod string

const (
	JoinDateExact JoinMethod = "date+exact"
	JoinDateSwap  JoinMethod = "date+swap"
	JoinSWExact   JoinMethod = "sw+exact"
	JoinSWSwap    JoinMethod = "sw+swap"
	JoinNone      JoinMethod = "none"
)

// CoverageScope marks whether a bet falls inside the assumed line-coverage era
type CoverageScope string

const (
	CoverageFull CoverageScope = "FULL"
	CoveragePre  CoverageScope = "PRE_COVERAGE"
)

// ScoreStatus values for game results
const (
	StatusFinal      = "final"
	StatusInProgress = "in_progress"
	StatusScheduled  = "scheduled"
)

// Edge is a hypothetical bet produced by upstream candidate generation.
// Edges are read-only to the pipeline; annotations accumulate on BetRow.
type Edge struct {
	DateISO       string   `json:"date_iso"`      // YYYY-MM-DD, may be empty
	Season        int      `json:"season"`        // 0 when unknown
	Week          int      `json:"week"`          // 0 when unknown
	Home          string   `json:"home"`          // raw team name
	Away          string   `json:"away"`          // raw team name
	Market        string   `json:"market"`        // raw market label
	Side          string   `json:"side"`          // raw side or team name
	Line          *float64 `json:"line"`          // spread or total; nil for H2H
	OddsAmerican  int      `json:"odds_american"` // 0 when missing
	Stake         float64  `json:"stake"`         // defaults to 1.0
	PWin          *float64 `json:"p_win,omitempty"`
	Book          string   `json:"book,omitempty"`
	GameID        string   `json:"game_id,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// Score is a final game result from the scores table
type Score struct {
	DateISO    string     `json:"date_iso"`
	Season     int        `json:"season"`
	Week       int        `json:"week"`
	Home       string     `json:"home"`
	Away       string     `json:"away"`
	HomeNick   string     `json:"home_nick,omitempty"` // set by normalization
	AwayNick   string     `json:"away_nick,omitempty"`
	HomeScore  int        `json:"home_score"`
	AwayScore  int        `json:"away_score"`
	Status     string     `json:"status"` // final, in_progress, scheduled
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// LineSnapshot is one book's quote for one market side at a moment in time.
// Snapshots are append-only; Seq is a monotonic ingestion sequence used to
// break captured_at ties.
type LineSnapshot struct {
	CapturedAt    time.Time  `json:"captured_at"`
	GameKey       string     `json:"game_key"` // YYYY-MM-DD|HOME@AWAY
	Book          string     `json:"book"`
	Market        Market     `json:"market"`
	Side          Side       `json:"side"`
	Line          *float64   `json:"line"`
	PriceAmerican *int       `json:"price_american"`
	Kickoff       *time.Time `json:"kickoff,omitempty"`
	Seq           int64      `json:"seq,omitempty"`
}

// OpenClose is the derived open/close pair for one (game, book, market, side)
type OpenClose struct {
	GameKey     string     `json:"game_key"`
	Book        string     `json:"book"`
	Market      Market     `json:"market"`
	Side        Side       `json:"side"`
	OpenLine    *float64   `json:"open_line"`
	OpenPrice   *int       `json:"open_price"`
	OpenAt      *time.Time `json:"open_at"`
	CloseLine   *float64   `json:"close_line"`
	ClosePrice  *int       `json:"close_price"`
	CloseAt     *time.Time `json:"close_at"`
	HasOpen     bool       `json:"has_open"`
	HasClose    bool       `json:"has_close"`
	IsSameLine  bool       `json:"is_same_line"`
	IsSamePrice bool       `json:"is_same_price"`
}

// BetRow is an Edge carried through the pipeline with its accumulated
// annotations. The embedded Edge is never mutated except for date repair,
// which fills DateISO on the row, not the source Edge.
type BetRow struct {
	Edge Edge `json:"edge"`

	// Canonical identifiers from normalization
	DateISO  string `json:"date_iso"`
	HomeNick string `json:"home_nick"`
	AwayNick string `json:"away_nick"`
	Market   Market `json:"market"`
	Side     Side   `json:"side"`

	// PickNick is the picked team for H2H/SPREADS, OVER/UNDER for totals
	PickNick string `json:"pick_nick"`

	// Score annotations (oriented to this row's home/away)
	HomeScore  *int       `json:"home_score"`
	AwayScore  *int       `json:"away_score"`
	JoinMethod JoinMethod `json:"join_method"`

	// Odds annotations from the best matching line
	BookUsed   string     `json:"book_used,omitempty"`
	PriceUsed  *int       `json:"price_used_american"`
	LineUsed   *float64   `json:"line_used"`
	CapturedAt *time.Time `json:"line_captured_at,omitempty"`
}

// SettledBet is the graded output row
type SettledBet struct {
	BetRow

	Result        Result        `json:"result"`
	UnitProfit    float64       `json:"unit_profit"`
	CoverageScope CoverageScope `json:"coverage_scope"`

	// CLV is implied(close) - implied(bet price) when a close is known
	CLV *float64 `json:"clv,omitempty"`
}

// SchemaError identifies a required column missing from an input table.
// Per-row data problems never raise errors; they settle VOID instead.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return "input table " + e.Table + " is missing required column " + e.Column
}
