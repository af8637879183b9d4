// Package params provides the HardforkManager: an ordered hardfork schedule
// plus a protocol-parameter dictionary keyed by (parameter name, hardfork),
// so opcode and block-validation logic can stay pure functions of (header
// context, parameter lookup) instead of baking per-fork constants into the
// interpreter. The set of supported hardforks changes over time; this
// package is where that change is meant to land.
package params

// Hardfork is one entry in the activation schedule. A hardfork activates by
// block number (pre-merge, PoW forks) or by timestamp (post-merge forks);
// exactly one of ActivationBlock/ActivationTimestamp is expected to be set
// for an activated fork, both nil for one not yet scheduled.
type Hardfork struct {
	Name                string
	ActivationBlock     *uint64
	ActivationTimestamp *uint64
}

// ForkContext is the (block number, timestamp) pair hardfork activation and
// EIP-activity checks are evaluated against.
type ForkContext struct {
	BlockNumber uint64
	Timestamp   uint64
}

// HardforkManager resolves hardfork activation, EIP activity, and protocol
// parameter values against an ordered fork schedule. All opcode and
// block-validation logic is meant to go through one of its lookups rather
// than switching on hardfork name directly.
type HardforkManager struct {
	order   []Hardfork
	index   map[string]int
	eips    map[int]string
	params  map[string]map[string]int64
}

// NewHardforkManager builds a manager from an ordered fork schedule. Order
// is the declaration order used to break ties and to compare hardforks with
// HardforkGTE; it need not match numeric activation order, though in every
// chain config this package ships it does.
func NewHardforkManager(order []Hardfork) *HardforkManager {
	m := &HardforkManager{
		order:  order,
		index:  make(map[string]int, len(order)),
		eips:   make(map[int]string),
		params: make(map[string]map[string]int64),
	}
	for i, hf := range order {
		m.index[hf.Name] = i
	}
	return m
}

// WithEIPs registers the hardfork each EIP number was introduced at. It
// returns the receiver for chaining at construction time.
func (m *HardforkManager) WithEIPs(eips map[int]string) *HardforkManager {
	for eip, hf := range eips {
		m.eips[eip] = hf
	}
	return m
}

// WithParam registers the value a named parameter takes starting at the
// given hardfork (inclusive) until a later registration overrides it. It
// returns the receiver for chaining at construction time.
func (m *HardforkManager) WithParam(name, hardfork string, value int64) *HardforkManager {
	values, ok := m.params[name]
	if !ok {
		values = make(map[string]int64)
		m.params[name] = values
	}
	values[hardfork] = value
	return m
}

// indexOf returns the declaration-order position of a hardfork name.
func (m *HardforkManager) indexOf(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// HardforkFor returns the latest-activated hardfork whose activation block
// is <= blockNumber, or whose activation timestamp is <= timestamp.
// Ties (a later-declared fork activating at the same point as an earlier
// one) resolve to the later-declared fork, consistent with declaration
// order being the authoritative ordering.
func (m *HardforkManager) HardforkFor(blockNumber, timestamp uint64) string {
	latest := ""
	for _, hf := range m.order {
		active := false
		if hf.ActivationBlock != nil && *hf.ActivationBlock <= blockNumber {
			active = true
		}
		if hf.ActivationTimestamp != nil && *hf.ActivationTimestamp <= timestamp {
			active = true
		}
		if active {
			latest = hf.Name
		}
	}
	return latest
}

// HardforkGTE reports whether hardfork a activated at or after hardfork b,
// by declaration order. Unknown names compare false.
func (m *HardforkManager) HardforkGTE(a, b string) bool {
	ia, ok := m.indexOf(a)
	if !ok {
		return false
	}
	ib, ok := m.indexOf(b)
	if !ok {
		return false
	}
	return ia >= ib
}

// IsEIPActiveAtHardfork reports whether the given EIP is active at (or
// after) the hardfork it was introduced in, compared against the supplied
// hardfork. An EIP with no registered introduction hardfork is never active.
func (m *HardforkManager) IsEIPActiveAtHardfork(eip int, hardfork string) bool {
	introducedAt, ok := m.eips[eip]
	if !ok {
		return false
	}
	return m.HardforkGTE(hardfork, introducedAt)
}

// IsEIPActiveAtBlock resolves the hardfork active at ctx and reports
// whether the given EIP is active there.
func (m *HardforkManager) IsEIPActiveAtBlock(eip int, ctx ForkContext) bool {
	hf := m.HardforkFor(ctx.BlockNumber, ctx.Timestamp)
	return m.IsEIPActiveAtHardfork(eip, hf)
}

// ParamAtHardfork returns the most-recently-registered value of a named
// parameter at or before the given hardfork. The second return is false if
// the parameter has no registration at or before that hardfork (including
// when either name is unknown).
func (m *HardforkManager) ParamAtHardfork(name, hardfork string) (int64, bool) {
	hfIdx, ok := m.indexOf(hardfork)
	if !ok {
		return 0, false
	}
	values, ok := m.params[name]
	if !ok {
		return 0, false
	}
	bestIdx := -1
	var bestVal int64
	for hfName, val := range values {
		idx, ok := m.indexOf(hfName)
		if !ok || idx > hfIdx {
			continue
		}
		if idx > bestIdx {
			bestIdx = idx
			bestVal = val
		}
	}
	if bestIdx == -1 {
		return 0, false
	}
	return bestVal, true
}

// Hardforks returns the ordered fork schedule.
func (m *HardforkManager) Hardforks() []Hardfork {
	return m.order
}
