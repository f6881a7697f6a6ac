package ruleset

import (
	"os"

	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

// Store is the rule store: an append-only ordered sequence of
// rules plus a hash index over (source-plugin, source-interface,
// source-param). Not safe for concurrent use — thread safety of the
// store is an explicit non-goal.
type Store struct {
	rules  []Rule
	idx    *index
	cached []int // positions of enabled rules with CacheSelf set, in insertion order

	Entry EntryConfig
}

// New creates an empty rule store, optionally pre-sizing the rule slice.
func New(ruleCapacityHint int) *Store {
	s := &Store{}
	if ruleCapacityHint > 0 {
		s.rules = make([]Rule, 0, ruleCapacityHint)
	}
	s.idx = rebuildIndex(s.rules)
	return s
}

// Rules returns the live ordered rule sequence. Callers must not mutate
// the returned slice's elements' Source/Target.
func (s *Store) Rules() []Rule { return s.rules }

// LoadRules parses path and appends all well-formed rules to the
// store, rebuilding the index and the cached-rule vector afterward.
// Returns the count of rules added.
//
// An unreadable or missing file logs a WARNING and returns zero added,
// not an error — a missing rule file is treated as non-fatal.
func (s *Store) LoadRules(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		rtlog.Warn("rule file unreadable", zap.String("path", path), zap.Error(err))
		return 0, nil
	}
	defer f.Close()

	sections := scanSections(f, path)

	// Pass 1: extract EntryPlugin globals before any rule is logged.
	for i := range sections {
		if sections[i].name == "EntryPlugin" {
			cfg := parseEntrySection(&sections[i], path)
			s.mergeEntry(cfg)
		}
	}
	if s.Entry.DisableInfoLog {
		rtlog.SetInfoDisabled(true)
	}

	// Pass 2: extract rule sections, preserving textual order. Indices
	// embedded in TransferRule_<N> are diagnostic only; duplicate or
	// non-monotonic N is a warning, never rejected.
	var added []Rule
	seen := map[int]bool{}
	lastIndex := -1
	for i := range sections {
		n, ok := isRuleSectionName(sections[i].name)
		if !ok {
			continue
		}
		if seen[n] {
			rtlog.Warn("duplicate TransferRule index", zap.String("path", path), zap.Int("index", n))
		} else if n < lastIndex {
			rtlog.Warn("non-monotonic TransferRule index", zap.String("path", path), zap.Int("index", n))
		}
		seen[n] = true
		lastIndex = n

		r := parseRuleSection(&sections[i], n)
		added = append(added, r)
	}

	if len(added) == 0 {
		return 0, nil
	}

	s.rules = append(s.rules, added...)
	s.rebuild()
	rtlog.Info("loaded rule file", zap.String("path", path), zap.Int("added", len(added)))
	return len(added), nil
}

// LoadRulesMerge layers rule-collision detection on top of LoadRules: it
// logs a WARNING for every newly-loaded rule whose (target-plugin,
// target-interface, target-param) collides with an already-loaded
// rule, but keeps both rules — append-only, never overwriting.
func (s *Store) LoadRulesMerge(path string) (int, error) {
	before := len(s.rules)
	existing := make(map[[3]string]bool, before)
	for i := 0; i < before; i++ {
		existing[targetKey(s.rules[i].Target)] = true
	}

	added, err := s.LoadRules(path)
	if err != nil || added == 0 {
		return added, err
	}

	for i := before; i < len(s.rules); i++ {
		k := targetKey(s.rules[i].Target)
		if existing[k] {
			rtlog.Warn("rule target collides with an already-loaded rule",
				zap.String("path", path),
				zap.String("target_plugin", s.rules[i].Target.Plugin),
				zap.String("target_interface", s.rules[i].Target.Interface),
				zap.Int("target_param", s.rules[i].Target.Param))
		}
		existing[k] = true
	}
	return added, nil
}

func targetKey(t Target) [3]string {
	return [3]string{t.Plugin, t.Interface, itoa(t.Param)}
}

func itoa(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		if neg {
			return "-0"
		}
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (s *Store) mergeEntry(cfg EntryConfig) {
	if cfg.PluginName != "" {
		s.Entry.PluginName = cfg.PluginName
	}
	if cfg.PluginPath != "" {
		s.Entry.PluginPath = cfg.PluginPath
	}
	if cfg.NxptPath != "" {
		s.Entry.NxptPath = cfg.NxptPath
	}
	if cfg.AutoRunInterface != "" {
		s.Entry.AutoRunInterface = cfg.AutoRunInterface
	}
	s.Entry.DisableInfoLog = s.Entry.DisableInfoLog || cfg.DisableInfoLog
	s.Entry.EnableValidation = s.Entry.EnableValidation || cfg.EnableValidation
	if len(cfg.IgnorePlugins) > 0 {
		s.Entry.IgnorePlugins = append(s.Entry.IgnorePlugins, cfg.IgnorePlugins...)
	}
}

func (s *Store) rebuild() {
	s.idx = rebuildIndex(s.rules)
	s.cached = s.cached[:0]
	for i := range s.rules {
		if s.rules[i].CacheSelf && s.rules[i].Enabled {
			s.cached = append(s.cached, i)
		}
	}
}

// FindRules returns, in insertion order, the positions of enabled rules
// whose source matches (plugin, iface, param) — the find_rules
// contract.
func (s *Store) FindRules(plugin, iface string, param int) []int {
	candidates := s.idx.lookup(s.rules, plugin, iface, param)
	out := make([]int, 0, len(candidates))
	for _, pos := range candidates {
		if s.rules[pos].Enabled {
			out = append(out, pos)
		}
	}
	return out
}

// At returns the rule at pos. Panics if pos is out of range — callers
// are expected to only ever pass positions obtained from FindRules or
// Rules(), which are always live.
func (s *Store) At(pos int) *Rule { return &s.rules[pos] }

// CachedPositions returns the positions of enabled rules with CacheSelf
// set, in insertion order. This mirrors a diagnostic accessor rather
// than a FindRules shortcut: CacheSelf rules are not looked up any
// differently than other rules, this just lets a caller enumerate them
// without a full scan of Rules().
func (s *Store) CachedPositions() []int { return s.cached }

// CachedCount returns len(CachedPositions()).
func (s *Store) CachedCount() int { return len(s.cached) }

// Len returns the number of rules currently in the store.
func (s *Store) Len() int { return len(s.rules) }

// VerifyIndexSoundness checks the hash index for every rule currently
// indexed: every stored position has source fields whose FNV-1a of the
// canonical key matches the bucket it was filed under, and the position
// is in range. Exported for use by tests; not called on the hot path.
func (s *Store) VerifyIndexSoundness() error {
	for b, chain := range s.idx.buckets {
		for _, e := range chain {
			if e.pos >= len(s.rules) {
				return rterr.Newf(errkind.Overflow, "rule index bucket %d: position %d out of range (len=%d)", b, e.pos, len(s.rules))
			}
			src := s.rules[e.pos].Source
			want := KeyHash(src.Plugin, src.Interface, src.Param)
			if want != e.hash {
				return rterr.Newf(errkind.BadArg, "rule index bucket %d: position %d hash mismatch", b, e.pos)
			}
		}
	}
	return nil
}
