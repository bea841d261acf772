package football_nfl

import "strings"

// nicknames is the closed set of canonical NFL team tokens. Nickify output
// is always one of these or empty.
var nicknames = map[string]bool{
	"49ERS":      true,
	"BEARS":      true,
	"BENGALS":    true,
	"BILLS":      true,
	"BRONCOS":    true,
	"BROWNS":     true,
	"BUCCANEERS": true,
	"CARDINALS":  true,
	"CHARGERS":   true,
	"CHIEFS":     true,
	"COLTS":      true,
	"COMMANDERS": true,
	"COWBOYS":    true,
	"DOLPHINS":   true,
	"EAGLES":     true,
	"FALCONS":    true,
	"GIANTS":     true,
	"JAGUARS":    true,
	"JETS":       true,
	"LIONS":      true,
	"PACKERS":    true,
	"PANTHERS":   true,
	"PATRIOTS":   true,
	"RAIDERS":    true,
	"RAMS":       true,
	"RAVENS":     true,
	"SAINTS":     true,
	"SEAHAWKS":   true,
	"STEELERS":   true,
	"TEXANS":     true,
	"TITANS":     true,
	"VIKINGS":    true,
}

// aliases collapses historical names, relocations, and abbreviations onto the
// canonical nickname. Flat many-to-one lookup; no chains. The ambiguous bare
// "LA" resolves to RAMS everywhere; Chargers references must be explicit.
var aliases = map[string]string{
	// Relocations and renames
	"REDSKINS":                 "COMMANDERS",
	"WASHINGTON":               "COMMANDERS",
	"WASHINGTON_REDSKINS":      "COMMANDERS",
	"WASHINGTON_FOOTBALL_TEAM": "COMMANDERS",
	"FOOTBALL_TEAM":            "COMMANDERS",
	"OILERS":                   "TITANS",
	"HOUSTON_OILERS":           "TITANS",
	"TENNESSEE_OILERS":         "TITANS",

	// Raiders: Oakland, Los Angeles, Las Vegas
	"OAKLAND":          "RAIDERS",
	"OAK":              "RAIDERS",
	"LV":               "RAIDERS",
	"LAS":              "RAIDERS",
	"VEGAS":            "RAIDERS",
	"LAS_VEGAS":        "RAIDERS",

	// Rams: St. Louis and Los Angeles. Bare LA is always the Rams.
	"STL":       "RAMS",
	"ST_LOUIS":  "RAMS",
	"LA":        "RAMS",
	"LAR":       "RAMS",

	// Chargers: San Diego and explicit LAC
	"SD":        "CHARGERS",
	"SAN_DIEGO": "CHARGERS",
	"LAC":       "CHARGERS",

	// Common abbreviations that don't end in the nickname token
	"ARI": "CARDINALS",
	"ATL": "FALCONS",
	"BAL": "RAVENS",
	"BUF": "BILLS",
	"CAR": "PANTHERS",
	"CHI": "BEARS",
	"CIN": "BENGALS",
	"CLE": "BROWNS",
	"DAL": "COWBOYS",
	"DEN": "BRONCOS",
	"DET": "LIONS",
	"GB":  "PACKERS",
	"HOU": "TEXANS",
	"IND": "COLTS",
	"JAX": "JAGUARS",
	"JAC": "JAGUARS",
	"KC":  "CHIEFS",
	"MIA": "DOLPHINS",
	"MIN": "VIKINGS",
	"NE":  "PATRIOTS",
	"NO":  "SAINTS",
	"NYG": "GIANTS",
	"NYJ": "JETS",
	"PHI": "EAGLES",
	"PIT": "STEELERS",
	"SEA": "SEAHAWKS",
	"SF":  "49ERS",
	"TB":  "BUCCANEERS",
	"TEN": "TITANS",
	"WAS": "COMMANDERS",
	"WSH": "COMMANDERS",

	// Spelling variants
	"NINERS": "49ERS",
	"BUCS":   "BUCCANEERS",
	"SKINS":  "COMMANDERS",
}

// Nickify canonicalizes a team name to its short nickname token.
// It uppercases, strips punctuation, collapses whitespace, applies the alias
// table, and keeps the last token ("NEW ENGLAND PATRIOTS" → "PATRIOTS").
// Unknown teams yield the empty string so downstream joins miss rather than
// mismatch. Nickify is idempotent.
func Nickify(name string) string {
	cleaned := cleanToken(name)
	if cleaned == "" {
		return ""
	}

	if canonical, ok := aliases[cleaned]; ok {
		return canonical
	}

	// Keep the last word of a multi-word name, then alias it
	parts := strings.Split(cleaned, "_")
	last := parts[len(parts)-1]
	if canonical, ok := aliases[last]; ok {
		return canonical
	}

	if nicknames[last] {
		return last
	}

	return ""
}

// IsKnownNick reports whether a token is a canonical NFL nickname
func IsKnownNick(nick string) bool {
	return nicknames[nick]
}

// cleanToken uppercases, replaces punctuation with spaces, and joins the
// remaining fields with underscores
func cleanToken(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "_")
}
