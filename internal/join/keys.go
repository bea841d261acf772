package join

import (
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/normalize"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/sports/football_nfl"
)

// Keys holds every join key derivable from one record. Empty components
// produce empty keys, which never match anything.
type Keys struct {
	StrictDate string // date|HOME@AWAY
	SwapDate   string // date|AWAY@HOME
	PairSW     string // HOME@AWAY|season|week
	PairSWSwap string // AWAY@HOME|season|week
}

// GameKey builds the canonical game key: YYYY-MM-DD|HOME@AWAY
func GameKey(dateISO, homeNick, awayNick string) string {
	if dateISO == "" || homeNick == "" || awayNick == "" {
		return ""
	}
	return dateISO + "|" + homeNick + "@" + awayNick
}

// BuildKeys derives the full key set for a record
func BuildKeys(dateISO, homeNick, awayNick string, season, week int) Keys {
	k := Keys{
		StrictDate: GameKey(dateISO, homeNick, awayNick),
		SwapDate:   GameKey(dateISO, awayNick, homeNick),
	}

	if season > 0 && week > 0 && homeNick != "" && awayNick != "" {
		sw := fmt.Sprintf("%d|%d", season, week)
		k.PairSW = homeNick + "@" + awayNick + "|" + sw
		k.PairSWSwap = awayNick + "@" + homeNick + "|" + sw
	}

	return k
}

// ParseGameKey splits and canonicalizes an externally supplied game key.
// Accepts YYYY-MM-DD|HOME@AWAY with arbitrary team spellings and date
// formats. Returns ok=false when either team is unresolvable.
func ParseGameKey(key string) (dateISO, homeNick, awayNick string, ok bool) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return "", "", "", false
	}

	teams := strings.SplitN(parts[1], "@", 2)
	if len(teams) != 2 {
		return "", "", "", false
	}

	dateISO = normalize.Date(parts[0])
	homeNick = football_nfl.Nickify(teams[0])
	awayNick = football_nfl.Nickify(teams[1])

	if homeNick == "" || awayNick == "" {
		return "", "", "", false
	}

	return dateISO, homeNick, awayNick, true
}

// SeasonOfDate approximates the NFL season of an event date: January through
// July belong to the previous calendar year's season.
func SeasonOfDate(dateISO string) int {
	if len(dateISO) < 10 {
		return 0
	}

	var year, month int
	if _, err := fmt.Sscanf(dateISO[:7], "%d-%d", &year, &month); err != nil {
		return 0
	}

	if month <= 7 {
		return year - 1
	}
	return year
}
