package colony

import "strings"

// Canonical wildcard tokens. A symbol containing MarkerAll stands for every
// robot of the swarm, one containing MarkerSelf for the executing robot.
const (
	MarkerAll  = "W_ALL"
	MarkerSelf = "W_ID"
)

// Raw marker conventions accepted from model files, rewritten in this order
// so that "$id" is not read as "$" followed by "id".
var markerReplacer = strings.NewReplacer(
	"$id", MarkerSelf,
	"%id", MarkerSelf,
	"$", MarkerAll,
	"*", MarkerAll,
)

// NormalizeName rewrites raw wildcard markers into canonical tokens.
func NormalizeName(name string) string {
	return markerReplacer.Replace(name)
}

// HasRawMarker reports whether name still carries an un-normalized marker.
func HasRawMarker(name string) bool {
	return strings.ContainsAny(name, "$*") || strings.Contains(name, "%id")
}

// WellPlacedMarker reports whether a wildcard symbol carries exactly one marker
// and carries it as its "_W_ALL" or "_W_ID" suffix, the only position the
// runtime resolves. Names without a marker are reported as well placed.
func WellPlacedMarker(name string) bool {
	n := strings.Count(name, MarkerAll) + strings.Count(name, MarkerSelf)
	switch n {
	case 0:
		return true
	case 1:
		return strings.HasSuffix(name, "_"+MarkerAll) || strings.HasSuffix(name, "_"+MarkerSelf)
	default:
		return false
	}
}

// Normalize returns a copy of m with canonical marker keys. Raw spellings that
// collapse onto the same symbol have their counts summed.
func (m Multiset) Normalize() Multiset {
	if m == nil {
		return nil
	}
	out := make(Multiset, len(m))
	for _, name := range m.Names() {
		out[NormalizeName(name)] += m[name]
	}
	return out
}

// Normalize rewrites markers in both operands of the branch.
func (b *Branch) Normalize() {
	b.LHS = NormalizeName(b.LHS)
	b.RHS = NormalizeName(b.RHS)
}

// NormalizeMarkers rewrites raw wildcard markers everywhere in the colony: the
// alphabet, the environment, every agent multiset and rule operand, and the
// environments of the parent swarm.
func (c *Colony) NormalizeMarkers() {
	for i, name := range c.Alphabet {
		c.Alphabet[i] = NormalizeName(name)
	}
	c.Env = c.Env.Normalize()

	for _, a := range c.Agents {
		a.Obj = a.Obj.Normalize()
		for _, p := range a.Programs {
			for i := range p {
				p[i].Main.Normalize()
				if p[i].Alt != nil {
					p[i].Alt.Normalize()
				}
			}
		}
	}

	if s := c.Swarm; s != nil {
		s.GlobalEnv = s.GlobalEnv.Normalize()
		s.InEnv = s.InEnv.Normalize()
		s.OutEnv = s.OutEnv.Normalize()
	}
}
