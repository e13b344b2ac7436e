// Package exploration holds the core domain model of the universe explorer:
// domains, entities, insights, and the exploration state that the engine
// maintains between refresh cycles.
package exploration

// Domain identifies one named category of discovered entities.
type Domain string

const (
	// DomainFinancial holds cryptocurrency market entities.
	DomainFinancial Domain = "financial"

	// DomainNews holds monitored news-feed sources.
	DomainNews Domain = "news"

	// DomainResearch holds research-paper index categories.
	DomainResearch Domain = "research"
)

// AllDomains lists every domain in discovery order.
var AllDomains = []Domain{DomainFinancial, DomainNews, DomainResearch}

// AttributeKind tags the value variant carried by an Attribute.
type AttributeKind int

const (
	// AttributeString is a free-text attribute, scanned by search.
	AttributeString AttributeKind = iota

	// AttributeNumber is a numeric attribute (price, count, percentage).
	AttributeNumber
)

// Attribute is a single named value on an entity. Entities expose their
// fields as a flat attribute list so that search and serialization do not
// need to know about per-domain schemas.
type Attribute struct {
	Name   string
	Kind   AttributeKind
	String string
	Number float64
}

// StringAttr builds a string attribute.
func StringAttr(name, value string) Attribute {
	return Attribute{Name: name, Kind: AttributeString, String: value}
}

// NumberAttr builds a numeric attribute.
func NumberAttr(name string, value float64) Attribute {
	return Attribute{Name: name, Kind: AttributeNumber, Number: value}
}

// Entity is one discovered item within a domain. Implementations are fixed
// per-domain structs; the interface exists so the store and search can treat
// domains uniformly.
type Entity interface {
	// Key returns the stable identifier of the entity within its domain,
	// e.g. "BTC-USD" or "cs.AI".
	Key() string

	// Attributes returns the entity's fields in a stable order.
	Attributes() []Attribute
}
