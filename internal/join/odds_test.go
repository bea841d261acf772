package join_test

import (
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/join"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/normalize"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/sports/football_nfl"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func snap(at time.Time, gameKey, book string, market models.Market, side models.Side, line *float64, price *int) models.LineSnapshot {
	return models.LineSnapshot{
		CapturedAt: at, GameKey: gameKey, Book: book,
		Market: market, Side: side, Line: line, PriceAmerican: price,
	}
}

func TestOddsAttachPrefersSharpBook(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)
	gameKey := "2023-10-08|Chiefs@Vikings"

	snaps := []models.LineSnapshot{
		snap(at, gameKey, "fanduel", models.MarketSpreads, models.SideHome, fp(-3.5), ip(-108)),
		snap(at, gameKey, "pinnacle", models.MarketSpreads, models.SideHome, fp(-3.5), ip(-110)),
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "spread", Side: "HOME", Line: fp(-3.5),
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, nil)
	table.Attach([]*models.BetRow{row})

	if row.BookUsed != "pinnacle" {
		t.Errorf("book = %q, want pinnacle", row.BookUsed)
	}
	if row.PriceUsed == nil || *row.PriceUsed != -110 {
		t.Error("price not attached from pinnacle")
	}
}

func TestOddsAttachSwappedGameKey(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)

	// Snapshot recorded with teams reversed; its HOME side is the row's away
	snaps := []models.LineSnapshot{
		snap(at, "2023-10-08|Vikings@Chiefs", "pinnacle",
			models.MarketH2H, models.SideAway, nil, ip(-150)),
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "h2h", Side: "HOME",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, nil)
	table.Attach([]*models.BetRow{row})

	if row.PriceUsed == nil || *row.PriceUsed != -150 {
		t.Error("swapped-key snapshot should attach with flipped side")
	}
}

func TestOddsAttachLatestSnapshot(t *testing.T) {
	gameKey := "2023-10-08|Chiefs@Vikings"
	early := time.Date(2023, 10, 2, 9, 0, 0, 0, time.UTC)
	late := time.Date(2023, 10, 8, 15, 0, 0, 0, time.UTC)

	snaps := []models.LineSnapshot{
		snap(early, gameKey, "pinnacle", models.MarketTotals, models.SideOver, fp(46.5), ip(-105)),
		snap(late, gameKey, "pinnacle", models.MarketTotals, models.SideOver, fp(47.0), ip(-110)),
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "totals", Side: "OVER",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, nil)
	table.Attach([]*models.BetRow{row})

	if row.LineUsed == nil || *row.LineUsed != 47.0 {
		t.Error("should attach the most recent snapshot")
	}
}

func TestOddsAttachSkipsPostKickoff(t *testing.T) {
	gameKey := "2023-10-08|Chiefs@Vikings"
	kickoff := time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC)
	before := kickoff.Add(-time.Hour)
	after := kickoff.Add(time.Hour)

	preGame := snap(before, gameKey, "pinnacle", models.MarketH2H, models.SideHome, nil, ip(-140))
	preGame.Kickoff = &kickoff
	live := snap(after, gameKey, "pinnacle", models.MarketH2H, models.SideHome, nil, ip(-400))
	live.Kickoff = &kickoff

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "h2h", Side: "HOME",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), []models.LineSnapshot{preGame, live}, nil)
	table.Attach([]*models.BetRow{row})

	if row.PriceUsed == nil || *row.PriceUsed != -140 {
		t.Error("post-kickoff snapshots must not attach")
	}
}

func TestOddsAttachSeasonFallback(t *testing.T) {
	// Edge has a date one day off; only the season-pair pass can match
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)
	snaps := []models.LineSnapshot{
		snap(at, "2023-10-08|Chiefs@Vikings", "circa",
			models.MarketSpreads, models.SideHome, fp(-3.5), ip(-112)),
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-09", Season: 2023, Home: "Chiefs", Away: "Vikings",
		Market: "spread", Side: "HOME", Line: fp(-3.5),
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, nil)
	table.Attach([]*models.BetRow{row})

	if row.BookUsed != "circa" {
		t.Errorf("season fallback did not attach, book = %q", row.BookUsed)
	}
}

func TestOddsAttachPrefersCloseValues(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)
	closeAt := time.Date(2023, 10, 8, 16, 55, 0, 0, time.UTC)
	gameKey := "2023-10-08|Chiefs@Vikings"

	snaps := []models.LineSnapshot{
		snap(at, gameKey, "pinnacle", models.MarketSpreads, models.SideHome, fp(-3.0), ip(-105)),
	}
	openCloses := []models.OpenClose{{
		GameKey: gameKey, Book: "pinnacle",
		Market: models.MarketSpreads, Side: models.SideHome,
		CloseLine: fp(-3.5), ClosePrice: ip(-110), CloseAt: &closeAt,
		HasClose: true,
	}}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "spread", Side: "HOME",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, openCloses)
	table.Attach([]*models.BetRow{row})

	if row.LineUsed == nil || *row.LineUsed != -3.5 {
		t.Error("close line should take precedence over raw snapshots")
	}
	if row.PriceUsed == nil || *row.PriceUsed != -110 {
		t.Error("close price should take precedence over raw snapshots")
	}
}

func TestOddsAttachCloseFromUnlistedBook(t *testing.T) {
	closeAt := time.Date(2023, 10, 8, 16, 55, 0, 0, time.UTC)
	gameKey := "2023-10-08|Chiefs@Vikings"

	// Only an unlisted book carries a close; it must still beat raw snapshots
	openCloses := []models.OpenClose{{
		GameKey: gameKey, Book: "betonline",
		Market: models.MarketSpreads, Side: models.SideHome,
		CloseLine: fp(-3.5), ClosePrice: ip(-107), CloseAt: &closeAt,
		HasClose: true,
	}}
	snaps := []models.LineSnapshot{
		snap(closeAt.Add(-2*time.Hour), gameKey, "pinnacle",
			models.MarketSpreads, models.SideHome, fp(-3.0), ip(-110)),
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "spread", Side: "HOME",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, openCloses)
	table.Attach([]*models.BetRow{row})

	if row.BookUsed != "betonline" {
		t.Errorf("book = %q, want the unlisted book's close", row.BookUsed)
	}
	if row.PriceUsed == nil || *row.PriceUsed != -107 {
		t.Error("close price from unlisted book not attached")
	}
}

func TestOddsAttachCloseBookRankTieBreak(t *testing.T) {
	closeAt := time.Date(2023, 10, 8, 16, 55, 0, 0, time.UTC)
	gameKey := "2023-10-08|Chiefs@Vikings"

	openCloses := []models.OpenClose{
		{
			GameKey: gameKey, Book: "betonline",
			Market: models.MarketSpreads, Side: models.SideHome,
			CloseLine: fp(-3.0), ClosePrice: ip(-105), CloseAt: &closeAt,
			HasClose: true,
		},
		{
			GameKey: gameKey, Book: "pinnacle",
			Market: models.MarketSpreads, Side: models.SideHome,
			CloseLine: fp(-3.5), ClosePrice: ip(-110), CloseAt: &closeAt,
			HasClose: true,
		},
	}

	row := normalize.Edge(models.Edge{
		DateISO: "2023-10-08", Home: "Chiefs", Away: "Vikings",
		Market: "spread", Side: "HOME",
	})

	table := join.NewOddsTable(football_nfl.DefaultConfig(), nil, openCloses)
	table.Attach([]*models.BetRow{row})

	if row.BookUsed != "pinnacle" {
		t.Errorf("book = %q, want pinnacle ahead of unlisted books", row.BookUsed)
	}
}

func TestBestPricePerSide(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)
	gameKey := join.GameKey("2023-10-08", "CHIEFS", "VIKINGS")

	snaps := []models.LineSnapshot{
		snap(at, gameKey, "pinnacle", models.MarketH2H, models.SideHome, nil, ip(-150)),
		snap(at, gameKey, "fanduel", models.MarketH2H, models.SideHome, nil, ip(-145)),
		snap(at, gameKey, "fanduel", models.MarketH2H, models.SideAway, nil, ip(130)),
	}

	table := join.NewOddsTable(football_nfl.DefaultConfig(), snaps, nil)
	best := table.BestPricePerSide(gameKey, at.Add(time.Hour))

	home := best[models.MarketH2H][models.SideHome]
	if home == nil || *home.PriceAmerican != -145 {
		t.Error("best home price should be -145 (higher is better for the bettor)")
	}
	away := best[models.MarketH2H][models.SideAway]
	if away == nil || *away.PriceAmerican != 130 {
		t.Error("best away price should be +130")
	}
}
