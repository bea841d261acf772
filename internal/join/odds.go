package join

import (
	"fmt"
	"math"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/sports/football_nfl"
)

// OddsTable indexes line snapshots and open/close rows for the bet-side
// odds join. Snapshots arrive with free-form game keys; both sides are
// canonicalized before indexing.
type OddsTable struct {
	cfg *football_nfl.Config

	byStrict     map[string][]*models.LineSnapshot // date|HOME@AWAY
	byPairSeason map[string][]*models.LineSnapshot // HOME@AWAY|season

	closes map[string][]*models.OpenClose // gamekey|market|side
}

// NewOddsTable builds the snapshot indexes. openCloses may be nil; when
// present, close values take precedence over raw snapshots.
func NewOddsTable(cfg *football_nfl.Config, snaps []models.LineSnapshot, openCloses []models.OpenClose) *OddsTable {
	t := &OddsTable{
		cfg:          cfg,
		byStrict:     make(map[string][]*models.LineSnapshot),
		byPairSeason: make(map[string][]*models.LineSnapshot),
		closes:       make(map[string][]*models.OpenClose),
	}

	for i := range snaps {
		s := &snaps[i]
		dateISO, home, away, ok := ParseGameKey(s.GameKey)
		if !ok {
			continue
		}

		strict := GameKey(dateISO, home, away)
		if strict != "" {
			t.byStrict[strict] = append(t.byStrict[strict], s)
		}

		if season := SeasonOfDate(dateISO); season > 0 {
			pair := fmt.Sprintf("%s@%s|%d", home, away, season)
			t.byPairSeason[pair] = append(t.byPairSeason[pair], s)
		}
	}

	for i := range openCloses {
		oc := &openCloses[i]
		dateISO, home, away, ok := ParseGameKey(oc.GameKey)
		if !ok {
			continue
		}
		strict := GameKey(dateISO, home, away)
		if strict == "" {
			continue
		}
		ck := closeKey(strict, oc.Market, oc.Side)
		t.closes[ck] = append(t.closes[ck], oc)
	}

	return t
}

func closeKey(gameKey string, market models.Market, side models.Side) string {
	return gameKey + "|" + string(market) + "|" + string(side)
}

// Attach annotates each row with the best matching line: book, price,
// line, captured-at. Matching runs the same four-pass cascade as the score
// join, with (market, side) filtering inside each pass. Rows without a
// canonical market and side are skipped; they void at grade time.
func (t *OddsTable) Attach(rows []*models.BetRow) {
	for _, row := range rows {
		if !row.Market.IsCanonical() || row.Side == "" {
			continue
		}
		if row.HomeNick == "" || row.AwayNick == "" {
			continue
		}

		season := row.Edge.Season
		if season == 0 {
			season = SeasonOfDate(row.DateISO)
		}

		type pass struct {
			gameKey string
			swapped bool
			snaps   []*models.LineSnapshot
		}

		k := BuildKeys(row.DateISO, row.HomeNick, row.AwayNick, 0, 0)
		pairExact := fmt.Sprintf("%s@%s|%d", row.HomeNick, row.AwayNick, season)
		pairSwap := fmt.Sprintf("%s@%s|%d", row.AwayNick, row.HomeNick, season)

		passes := []pass{
			{k.StrictDate, false, t.byStrict[k.StrictDate]},
			{k.SwapDate, true, t.byStrict[k.SwapDate]},
		}
		if season > 0 {
			passes = append(passes,
				pass{"", false, t.byPairSeason[pairExact]},
				pass{"", true, t.byPairSeason[pairSwap]},
			)
		}

		for _, p := range passes {
			side := effectiveSide(row.Side, p.swapped)

			// Close values first when the pass carries a concrete game key
			if p.gameKey != "" && t.attachFromClose(row, p.gameKey, side) {
				break
			}

			if best := t.bestSnapshot(row, p.snaps, side); best != nil {
				row.BookUsed = best.Book
				row.PriceUsed = best.PriceAmerican
				row.LineUsed = best.Line
				row.CapturedAt = &best.CapturedAt
				break
			}
		}
	}
}

// effectiveSide flips HOME/AWAY when the game key matched with teams
// swapped; OVER/UNDER are orientation-free
func effectiveSide(side models.Side, swapped bool) models.Side {
	if !swapped {
		return side
	}
	switch side {
	case models.SideHome:
		return models.SideAway
	case models.SideAway:
		return models.SideHome
	}
	return side
}

// attachFromClose uses an OpenClose-derived close when one exists for the
// game. Book order is a tie-break, not a filter: any book's close is
// eligible, with unlisted books ranking last.
func (t *OddsTable) attachFromClose(row *models.BetRow, gameKey string, side models.Side) bool {
	var best *models.OpenClose

	for _, oc := range t.closes[closeKey(gameKey, row.Market, side)] {
		if !oc.HasClose {
			continue
		}
		if best == nil || t.cfg.BookRank(oc.Book) < t.cfg.BookRank(best.Book) {
			best = oc
		}
	}

	if best == nil {
		return false
	}

	row.BookUsed = best.Book
	row.PriceUsed = best.ClosePrice
	row.LineUsed = best.CloseLine
	row.CapturedAt = best.CloseAt
	return true
}

// bestSnapshot picks the best line among candidates for the row:
// preferred-book rank, then most recent capture not past kickoff, then
// non-null price, then line closest to the row's declared line.
func (t *OddsTable) bestSnapshot(row *models.BetRow, candidates []*models.LineSnapshot, side models.Side) *models.LineSnapshot {
	var best *models.LineSnapshot

	for _, s := range candidates {
		if s.Market != row.Market || s.Side != side {
			continue
		}
		if s.Kickoff != nil && s.CapturedAt.After(*s.Kickoff) {
			continue
		}
		if best == nil || t.betterSnapshot(row, s, best) {
			best = s
		}
	}

	return best
}

func (t *OddsTable) betterSnapshot(row *models.BetRow, a, b *models.LineSnapshot) bool {
	ra, rb := t.cfg.BookRank(a.Book), t.cfg.BookRank(b.Book)
	if ra != rb {
		return ra < rb
	}

	if !a.CapturedAt.Equal(b.CapturedAt) {
		return a.CapturedAt.After(b.CapturedAt)
	}

	aPriced, bPriced := a.PriceAmerican != nil, b.PriceAmerican != nil
	if aPriced != bPriced {
		return aPriced
	}

	if row.Edge.Line != nil && a.Line != nil && b.Line != nil {
		da := math.Abs(*a.Line - *row.Edge.Line)
		db := math.Abs(*b.Line - *row.Edge.Line)
		if da != db {
			return da < db
		}
	}

	return a.Seq > b.Seq
}

// BestPricePerSide returns, for one game key, the single best-priced
// snapshot for each (market, side), honoring book preference order on ties.
// This is the exploratory "line shop" view over an accumulated table.
func (t *OddsTable) BestPricePerSide(gameKey string, asOf time.Time) map[models.Market]map[models.Side]*models.LineSnapshot {
	out := make(map[models.Market]map[models.Side]*models.LineSnapshot)

	for _, s := range t.byStrict[gameKey] {
		if s.PriceAmerican == nil || s.CapturedAt.After(asOf) {
			continue
		}

		sides, ok := out[s.Market]
		if !ok {
			sides = make(map[models.Side]*models.LineSnapshot)
			out[s.Market] = sides
		}

		cur := sides[s.Side]
		if cur == nil {
			sides[s.Side] = s
			continue
		}

		// Higher American price is better for the bettor on either sign
		if *s.PriceAmerican > *cur.PriceAmerican {
			sides[s.Side] = s
		} else if *s.PriceAmerican == *cur.PriceAmerican &&
			t.cfg.BookRank(s.Book) < t.cfg.BookRank(cur.Book) {
			sides[s.Side] = s
		}
	}

	return out
}
