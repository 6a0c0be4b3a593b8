package decision

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/awmpietro/entry-decision-engine/internal/decision/eval"
)

//go:embed rulebook.dot
var defaultRulebookDOT string

const rulebookStart = "start"

// Rule is one admissibility check: when Cond holds for an entry's facts the
// entry becomes a candidate for Outcome.
type Rule struct {
	Name    string
	Outcome Decision
	Cond    *eval.Compiled
}

// Rulebook is the compiled, immutable rule set. Every rule is evaluated for
// every entry.
type Rulebook struct {
	Rules []Rule
}

// DefaultRulebook compiles the rule book shipped with the binary.
func DefaultRulebook() (*Rulebook, error) {
	return CompileRulebook(defaultRulebookDOT)
}

// CompileRulebook reads a rule book from DOT. Outcome nodes carry their
// decision in label; each edge leaving start is a rule whose id is the rule
// name and whose label is the condition over Facts.
func CompileRulebook(dot string) (*Rulebook, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule book: %w", err)
	}

	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, fmt.Errorf("failed to analyze rule book: %w", err)
	}

	if g.Nodes.Lookup[rulebookStart] == nil {
		return nil, fmt.Errorf("missing %q node", rulebookStart)
	}

	outcomes := make(map[string]Decision, len(g.Nodes.Nodes))
	for _, n := range g.Nodes.Nodes {
		if n.Name == rulebookStart {
			continue
		}
		d, err := ParseDecision(getAttr(n.Attrs, "label"))
		if err != nil {
			return nil, fmt.Errorf("invalid outcome in node %q: %w", n.Name, err)
		}
		outcomes[n.Name] = d
	}

	rb := &Rulebook{}
	seen := map[string]struct{}{}

	for _, e := range g.Edges.Edges {
		if e.Src != rulebookStart {
			return nil, fmt.Errorf("edge %s->%s must leave %q", e.Src, e.Dst, rulebookStart)
		}
		outcome, ok := outcomes[e.Dst]
		if !ok {
			return nil, fmt.Errorf("edge references unknown outcome node %q", e.Dst)
		}

		name := getAttr(e.Attrs, "id")
		if name == "" {
			return nil, fmt.Errorf("edge %s->%s has no rule id", e.Src, e.Dst)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate rule %q", name)
		}
		seen[name] = struct{}{}

		cond, err := eval.Compile(getAttr(e.Attrs, "label"), Facts{})
		if err != nil {
			return nil, fmt.Errorf("invalid condition on rule %q: %w", name, err)
		}

		rb.Rules = append(rb.Rules, Rule{Name: name, Outcome: outcome, Cond: cond})
	}

	if len(rb.Rules) == 0 {
		return nil, fmt.Errorf("rule book has no rules")
	}

	return rb, nil
}

// getAttr reads a Graphviz attribute without its surrounding quotes.
func getAttr(attrs gographviz.Attrs, key string) string {
	val, ok := attrs[gographviz.Attr(key)]
	if !ok {
		return ""
	}

	val = strings.TrimSpace(val)
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}

	return val
}
