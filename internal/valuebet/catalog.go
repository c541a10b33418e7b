package valuebet

import (
	"fmt"
	"sort"

	"github.com/yourusername/puckline/internal/models"
)

// Catalog is a static table of bookmaker lines per bet category
type Catalog struct {
	quotes map[models.BetCategory][]models.OddsQuote
}

// NewCatalog builds a catalog from validated quotes
func NewCatalog(quotes ...models.OddsQuote) *Catalog {
	c := &Catalog{quotes: make(map[models.BetCategory][]models.OddsQuote)}
	for _, q := range quotes {
		c.quotes[q.Category] = append(c.quotes[q.Category], q)
	}
	for cat := range c.quotes {
		lines := c.quotes[cat]
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Line < lines[j].Line })
	}
	return c
}

// Entry is one configured line: category, line and decimal over/under odds
type Entry struct {
	Category string
	Line     float64
	Over     float64
	Under    float64
}

// CatalogFromEntries validates every entry and builds a catalog
func CatalogFromEntries(entries []Entry) (*Catalog, error) {
	quotes := make([]models.OddsQuote, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		cat := models.BetCategory(e.Category)
		if cat.OverBetType() == models.BetTypeUnknown {
			return nil, fmt.Errorf("unknown bet category %q in odds catalog", e.Category)
		}
		key := fmt.Sprintf("%s:%.2f", cat, e.Line)
		if seen[key] {
			return nil, fmt.Errorf("duplicate odds catalog line %s %.1f", e.Category, e.Line)
		}
		seen[key] = true

		q, err := models.NewOddsQuote(cat, e.Line, e.Over, e.Under)
		if err != nil {
			return nil, fmt.Errorf("odds catalog %s %.1f: %w", e.Category, e.Line, err)
		}
		quotes = append(quotes, q)
	}
	return NewCatalog(quotes...), nil
}

// DefaultCatalog returns the typical prematch lines
func DefaultCatalog() *Catalog {
	return NewCatalog(
		models.OddsQuote{Category: models.CategoryHomeIT, Line: 2.5, OverOdds: 1.95, UnderOdds: 1.85},
		models.OddsQuote{Category: models.CategoryHomeIT, Line: 3.5, OverOdds: 2.45, UnderOdds: 1.55},
		models.OddsQuote{Category: models.CategoryAwayIT, Line: 2.5, OverOdds: 2.10, UnderOdds: 1.75},
		models.OddsQuote{Category: models.CategoryAwayIT, Line: 3.5, OverOdds: 2.85, UnderOdds: 1.42},
		models.OddsQuote{Category: models.CategoryMatchTotal, Line: 5.5, OverOdds: 1.92, UnderOdds: 1.88},
		models.OddsQuote{Category: models.CategoryMatchTotal, Line: 6.5, OverOdds: 2.30, UnderOdds: 1.62},
	)
}

// Quotes lists every quote in fixed order: categories as in models.Categories, lines ascending
func (c *Catalog) Quotes() []models.OddsQuote {
	var out []models.OddsQuote
	for _, cat := range models.Categories {
		out = append(out, c.quotes[cat]...)
	}
	return out
}

// Len returns the number of quotes
func (c *Catalog) Len() int {
	n := 0
	for _, lines := range c.quotes {
		n += len(lines)
	}
	return n
}
