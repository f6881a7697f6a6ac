// Package ruleset implements the rule store, its hash index, and the
// .nxpt rule-file parser.
package ruleset

import "github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"

// Source identifies a source (plugin, interface, parameter) triple that
// an event is matched against.
type Source struct {
	Plugin    string
	Interface string
	Param     int // -1 means "return value"
}

// Target identifies where a matched rule routes its value to.
type Target struct {
	Plugin    string
	Path      string
	Interface string
	Param     int
}

// Rule is one immutable transfer binding. A zero-value Rule has
// empty Source/Target plugin names, which never match any query —
// exactly the documented behavior for a rule with a missing
// source/target field.
type Rule struct {
	Source Source
	Target Target

	// TargetConstant, when HasConstant is true, is applied to the
	// target parameter instead of whatever value the source event
	// carried.
	TargetConstant string
	HasConstant    bool

	Mode           abi.TransferMode
	MulticastGroup string
	Enabled        bool
	Condition      abi.Condition

	Description string
	CacheSelf   bool
	SetGroup    string

	// SectionIndex is the <N> from this rule's TransferRule_<N>
	// section header, kept for diagnostics only — matching and
	// iteration always use textual (insertion) order, never this
	// index.
	SectionIndex int
}

// HasSource reports whether the rule's source fields are non-empty and
// therefore eligible to ever match a query.
func (r *Rule) HasSource() bool {
	return r.Source.Plugin != "" && r.Source.Interface != ""
}

// Matches reports whether the rule is a live candidate for the given
// source event.
func (r *Rule) Matches(plugin, iface string, param int) bool {
	return r.Enabled &&
		r.HasSource() &&
		r.Source.Plugin == plugin &&
		r.Source.Interface == iface &&
		r.Source.Param == param
}
