// Package nlquery translates a plain-English question about team metrics into
// an untyped query dictionary, or into a clarification request or an
// out-of-scope rejection. Its query dictionaries are untrusted: callers pass
// them through query.FromMap like any other input.
package nlquery

// Kind classifies a parse outcome.
type Kind int

const (
	// KindQuery carries a query dictionary.
	KindQuery Kind = iota
	// KindClarify means the question is supportable but under-specified.
	KindClarify
	// KindOutOfScope means the question asks for something unsupported.
	KindOutOfScope
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindClarify:
		return "clarify"
	case KindOutOfScope:
		return "out_of_scope"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of parsing one question. Query is set only for
// KindQuery; Message is set for the other kinds.
type Outcome struct {
	Kind    Kind           `json:"kind"`
	Query   map[string]any `json:"query,omitempty"`
	Message string         `json:"message,omitempty"`
	// Season is the season label mentioned in the question, if any.
	Season string `json:"season,omitempty"`
}

// IsQuery reports whether the outcome carries a query dictionary.
func (o Outcome) IsQuery() bool {
	return o.Kind == KindQuery
}
