package openclose_test

import (
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/openclose"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

const gameKey = "2023-10-08|CHIEFS@VIKINGS"

func snapAt(at time.Time, line *float64, price *int) models.LineSnapshot {
	return models.LineSnapshot{
		CapturedAt: at, GameKey: gameKey, Book: "pinnacle",
		Market: models.MarketSpreads, Side: models.SideHome,
		Line: line, PriceAmerican: price,
	}
}

func TestBuildOpenAndClose(t *testing.T) {
	t0 := time.Date(2023, 10, 2, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	t2 := t0.Add(5 * 24 * time.Hour)

	snaps := []models.LineSnapshot{
		snapAt(t1, fp(-3.5), ip(-108)),
		snapAt(t0, fp(-3.0), ip(-110)),
		snapAt(t2, fp(-4.0), ip(-112)),
	}

	out := openclose.Build(snaps, 0)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}

	oc := out[0]
	if !oc.HasOpen || !oc.HasClose {
		t.Fatal("expected both open and close")
	}
	if *oc.OpenLine != -3.0 || *oc.OpenPrice != -110 {
		t.Errorf("open = %v/%v", *oc.OpenLine, *oc.OpenPrice)
	}
	if *oc.CloseLine != -4.0 || *oc.ClosePrice != -112 {
		t.Errorf("close = %v/%v", *oc.CloseLine, *oc.ClosePrice)
	}
	if oc.OpenAt.After(*oc.CloseAt) {
		t.Error("open must not be later than close")
	}
	if oc.IsSameLine || oc.IsSamePrice {
		t.Error("line and price moved; same flags should be false")
	}
}

func TestBuildKickoffBuffer(t *testing.T) {
	kickoff := time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC)

	early := snapAt(kickoff.Add(-6*time.Hour), fp(-3.0), ip(-110))
	early.Kickoff = &kickoff
	nearKick := snapAt(kickoff.Add(-30*time.Second), fp(-3.5), ip(-115))
	nearKick.Kickoff = &kickoff
	postKick := snapAt(kickoff.Add(10*time.Minute), fp(-7.0), ip(-200))
	postKick.Kickoff = &kickoff

	// 60s buffer excludes both the 30s-out and post-kickoff snapshots
	out := openclose.Build([]models.LineSnapshot{early, nearKick, postKick}, 60)
	if len(out) != 1 {
		t.Fatalf("got %d rows", len(out))
	}
	if *out[0].CloseLine != -3.0 {
		t.Errorf("close line = %v, want -3.0 from within the buffer", *out[0].CloseLine)
	}
}

func TestBuildNoKickoffUsesLatest(t *testing.T) {
	t0 := time.Date(2023, 10, 8, 9, 0, 0, 0, time.UTC)
	snaps := []models.LineSnapshot{
		snapAt(t0, fp(-3.0), ip(-110)),
		snapAt(t0.Add(time.Hour), fp(-3.5), ip(-110)),
	}

	out := openclose.Build(snaps, 300)
	if *out[0].CloseLine != -3.5 {
		t.Errorf("close line = %v, want latest with no kickoff bound", *out[0].CloseLine)
	}
}

func TestBuildSeqBreaksTies(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)

	first := snapAt(at, fp(-3.0), ip(-110))
	first.Seq = 1
	second := snapAt(at, fp(-3.5), ip(-110))
	second.Seq = 2

	out := openclose.Build([]models.LineSnapshot{second, first}, 0)
	oc := out[0]
	if *oc.OpenLine != -3.0 {
		t.Errorf("open line = %v, want the lower-sequence snapshot", *oc.OpenLine)
	}
	if *oc.CloseLine != -3.5 {
		t.Errorf("close line = %v, want the higher-sequence snapshot", *oc.CloseLine)
	}
}

func TestBuildNoQuotedSnapshotBeforeCutoff(t *testing.T) {
	kickoff := time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC)

	empty := snapAt(kickoff.Add(-6*time.Hour), nil, nil)
	empty.Kickoff = &kickoff
	lateQuote := snapAt(kickoff.Add(-30*time.Second), fp(-3.5), ip(-110))
	lateQuote.Kickoff = &kickoff

	// The only quoted snapshot sits inside the 60s buffer; the contentless
	// early one must not become the close
	out := openclose.Build([]models.LineSnapshot{empty, lateQuote}, 60)
	oc := out[0]
	if oc.HasClose {
		t.Fatalf("close = %v at %v, want none when no quote exists before the cutoff",
			oc.CloseLine, oc.CloseAt)
	}
	if !oc.HasOpen || *oc.OpenLine != -3.5 {
		t.Error("open should still come from the quoted snapshot")
	}
}

func TestBuildOpenNeverAfterClose(t *testing.T) {
	kickoff := time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC)

	snaps := []models.LineSnapshot{
		snapAt(kickoff.Add(-8*time.Hour), nil, nil),
		snapAt(kickoff.Add(-4*time.Hour), fp(-3.0), ip(-110)),
		snapAt(kickoff.Add(-2*time.Hour), fp(-3.5), ip(-112)),
	}
	for i := range snaps {
		snaps[i].Kickoff = &kickoff
	}

	oc := openclose.Build(snaps, 60)[0]
	if !oc.HasOpen || !oc.HasClose {
		t.Fatal("expected both open and close")
	}
	if oc.OpenAt.After(*oc.CloseAt) {
		t.Errorf("open_at %v after close_at %v", oc.OpenAt, oc.CloseAt)
	}
}

func TestBuildSkipsEmptyQuotesForOpen(t *testing.T) {
	t0 := time.Date(2023, 10, 8, 9, 0, 0, 0, time.UTC)
	snaps := []models.LineSnapshot{
		snapAt(t0, nil, nil),
		snapAt(t0.Add(time.Hour), fp(-3.0), ip(-110)),
	}

	out := openclose.Build(snaps, 0)
	oc := out[0]
	if !oc.HasOpen || *oc.OpenLine != -3.0 {
		t.Error("open should skip snapshots with no quote content")
	}
}

func TestBuildSameFlags(t *testing.T) {
	t0 := time.Date(2023, 10, 8, 9, 0, 0, 0, time.UTC)
	snaps := []models.LineSnapshot{
		snapAt(t0, fp(-3.0), ip(-110)),
		snapAt(t0.Add(time.Hour), fp(-3.0), ip(-110)),
	}

	out := openclose.Build(snaps, 0)
	if !out[0].IsSameLine || !out[0].IsSamePrice {
		t.Error("unchanged line and price should set both same flags")
	}
}

func TestBuildGroupsPerBookMarketSide(t *testing.T) {
	at := time.Date(2023, 10, 8, 12, 0, 0, 0, time.UTC)

	a := snapAt(at, fp(-3.0), ip(-110))
	b := snapAt(at, fp(3.0), ip(-110))
	b.Side = models.SideAway
	c := snapAt(at, fp(-3.0), ip(-108))
	c.Book = "circa"

	out := openclose.Build([]models.LineSnapshot{a, b, c}, 0)
	if len(out) != 3 {
		t.Errorf("got %d groups, want 3", len(out))
	}
}
