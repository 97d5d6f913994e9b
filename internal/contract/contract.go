// internal/contract/contract.go
package contract

// Type is the stable symbolic identifier of a contract. The string values
// travel inside share tokens.
type Type string

const (
	King       Type = "KING"
	Queens     Type = "QUEENS"
	Diamonds   Type = "DIAMONDS"
	Collection Type = "COLLECTION" // Latshat
	Trix       Type = "TRIX"
)

// Regime selects how a contract's round inputs are validated and scored.
type Regime int

const (
	// CountRegime: ItemCap units are split among the players, each scoring PointUnit.
	CountRegime Regime = iota
	// RankRegime: players receive distinct finishing ranks 1..4.
	RankRegime
)

// Contract is one of the five fixed scoring rules of a Trix kingdom.
type Contract struct {
	Type        Type   `json:"type"`
	Label       string `json:"label"`
	ArabicLabel string `json:"arabicLabel"`
	Description string `json:"description"`
	PointUnit   int    `json:"pointUnit"`
	ItemCap     int    `json:"itemCap"`
	Regime      Regime `json:"-"`
}

var catalog = map[Type]Contract{
	King: {
		Type:        King,
		Label:       "King of Hearts",
		ArabicLabel: "شيخ الكبة",
		Description: "Avoid the King of Hearts.",
		PointUnit:   -75,
		ItemCap:     1,
	},
	Queens: {
		Type:        Queens,
		Label:       "Queens",
		ArabicLabel: "بنات",
		Description: "Avoid the 4 Queens.",
		PointUnit:   -25,
		ItemCap:     4,
	},
	Diamonds: {
		Type:        Diamonds,
		Label:       "Diamonds",
		ArabicLabel: "ديناري",
		Description: "Avoid Diamond cards.",
		PointUnit:   -10,
		ItemCap:     13,
	},
	Collection: {
		Type:        Collection,
		Label:       "Latshat (Tricks)",
		ArabicLabel: "لطوش",
		Description: "Avoid taking any trick.",
		PointUnit:   -15,
		ItemCap:     13,
	},
	Trix: {
		Type:        Trix,
		Label:       "Trix",
		ArabicLabel: "تركس",
		Description: "Finish your cards first.",
		PointUnit:   0, // scored from the rank table
		ItemCap:     4, // ranks 1..4
		Regime:      RankRegime,
	},
}

// order is the display order used by pickers and the catalog endpoint.
var order = []Type{King, Queens, Diamonds, Collection, Trix}

// Lookup returns the contract for t.
func Lookup(t Type) (Contract, bool) {
	c, ok := catalog[t]
	return c, ok
}

// All returns every contract in display order.
func All() []Contract {
	out := make([]Contract, 0, len(order))
	for _, t := range order {
		out = append(out, catalog[t])
	}
	return out
}
