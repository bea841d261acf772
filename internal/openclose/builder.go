package openclose

import (
	"sort"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

type groupKey struct {
	gameKey string
	book    string
	market  models.Market
	side    models.Side
}

// Build derives one OpenClose row per (game_key, book, market, side) from an
// append-only snapshot stream.
//
// Open is the earliest snapshot carrying a price or line. Close is the
// latest snapshot captured no later than kickoff minus bufferSeconds when
// kickoff is known, otherwise the latest overall. Ordering is captured_at
// ascending with the ingestion sequence breaking ties.
func Build(snaps []models.LineSnapshot, bufferSeconds int) []models.OpenClose {
	groups := make(map[groupKey][]*models.LineSnapshot)
	var order []groupKey

	for i := range snaps {
		s := &snaps[i]
		k := groupKey{s.GameKey, s.Book, s.Market, s.Side}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}

	out := make([]models.OpenClose, 0, len(order))
	for _, k := range order {
		out = append(out, buildOne(k, groups[k], bufferSeconds))
	}
	return out
}

func buildOne(k groupKey, snaps []*models.LineSnapshot, bufferSeconds int) models.OpenClose {
	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].CapturedAt.Equal(snaps[j].CapturedAt) {
			return snaps[i].CapturedAt.Before(snaps[j].CapturedAt)
		}
		return snaps[i].Seq < snaps[j].Seq
	})

	oc := models.OpenClose{
		GameKey: k.gameKey,
		Book:    k.book,
		Market:  k.market,
		Side:    k.side,
	}

	// Open: earliest observation with any quote content
	for _, s := range snaps {
		if s.PriceAmerican == nil && s.Line == nil {
			continue
		}
		oc.OpenLine = s.Line
		oc.OpenPrice = s.PriceAmerican
		at := s.CapturedAt
		oc.OpenAt = &at
		oc.HasOpen = true
		break
	}

	// Close: latest quoted observation before the cutoff. Skipping
	// contentless snapshots here mirrors the open loop, so open never lands
	// after close: both draw from the same quoted subset.
	cutoff := closeCutoff(snaps, bufferSeconds)
	for i := len(snaps) - 1; i >= 0; i-- {
		s := snaps[i]
		if s.PriceAmerican == nil && s.Line == nil {
			continue
		}
		if cutoff != nil && s.CapturedAt.After(*cutoff) {
			continue
		}
		oc.CloseLine = s.Line
		oc.ClosePrice = s.PriceAmerican
		at := s.CapturedAt
		oc.CloseAt = &at
		oc.HasClose = true
		break
	}

	oc.IsSameLine = sameFloat(oc.OpenLine, oc.CloseLine)
	oc.IsSamePrice = sameInt(oc.OpenPrice, oc.ClosePrice)
	return oc
}

// closeCutoff returns kickoff minus the buffer when any snapshot in the
// group knows the kickoff; nil means no bound
func closeCutoff(snaps []*models.LineSnapshot, bufferSeconds int) *time.Time {
	for _, s := range snaps {
		if s.Kickoff != nil {
			cutoff := s.Kickoff.Add(-time.Duration(bufferSeconds) * time.Second)
			return &cutoff
		}
	}
	return nil
}

func sameFloat(a, b *float64) bool {
	return a != nil && b != nil && *a == *b
}

func sameInt(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}
