package football_nfl

// Config contains NFL-specific normalization configuration
type Config struct {
	SportKey    string
	DisplayName string

	// Preferred books for best-line selection (ordered: sharpest first)
	PreferredBooks []string

	// Market label synonyms mapped onto the canonical market tokens
	H2HSynonyms    []string
	SpreadSynonyms []string
	TotalSynonyms  []string
}

// DefaultConfig returns the standard NFL configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "americanfootball_nfl",
		DisplayName: "NFL Football",

		// Pinnacle: lowest margins, fastest to move
		// Circa: Vegas sharp book
		// Bookmaker: sharp offshore book
		PreferredBooks: []string{
			"pinnacle",
			"circa",
			"bookmaker",
			"draftkings",
			"fanduel",
		},

		H2HSynonyms:    []string{"h2h", "ml", "moneyline", "money line"},
		SpreadSynonyms: []string{"spread", "spreads", "point spread"},
		TotalSynonyms:  []string{"total", "totals", "over/under", "ou"},
	}
}

// BookRank returns the preference rank of a book (lower is better).
// Unlisted books rank after every listed one.
func (c *Config) BookRank(book string) int {
	for i, b := range c.PreferredBooks {
		if b == book {
			return i
		}
	}
	return len(c.PreferredBooks)
}
