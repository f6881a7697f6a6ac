package ruleset

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

const (
	maxLineLen    = 4096
	maxSectionLen = 512
	maxValueLen   = 2048
)

// rawSection is one [Section] block as it appeared textually, in order,
// with its key=value pairs also kept in textual order.
type rawSection struct {
	name string
	kv   []kvPair
}

type kvPair struct {
	key   string
	value string
}

func (s *rawSection) get(key string) (string, bool) {
	for _, p := range s.kv {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// scanSections does a single read of the file into an ordered list of
// sections, applying the truncation-with-warning rules for overlong
// lines, section names, and values. '#' introduces an end-of-line
// comment.
func scanSections(r io.Reader, path string) []rawSection {
	var sections []rawSection
	var current *rawSection

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 8192), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > maxLineLen {
			rtlog.Warn("rule file line truncated", zap.String("path", path), zap.Int("len", len(line)))
			line = line[:maxLineLen]
		}

		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := line[1 : len(line)-1]
			if len(name) > maxSectionLen {
				rtlog.Warn("rule file section name truncated", zap.String("path", path))
				name = name[:maxSectionLen]
			}
			sections = append(sections, rawSection{name: name})
			current = &sections[len(sections)-1]
			continue
		}

		if current == nil {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if len(value) > maxValueLen {
			rtlog.Warn("rule file value truncated", zap.String("path", path), zap.String("key", key))
			value = value[:maxValueLen]
		}
		current.kv = append(current.kv, kvPair{key: key, value: value})
	}

	return sections
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// ParseBool is the boolean parser used for rule flags: case-insensitive
// {0,1,true,false,yes,no,on,off}, plus any non-zero decimal integer as
// true. Anything else is false, and the caller should log a WARNING.
func ParseBool(s string) (value, recognised bool) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	switch lower {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n != 0, true
	}
	return false, false
}

func parseBoolWarn(s, field, path string) bool {
	v, ok := ParseBool(s)
	if !ok {
		rtlog.Warn("unrecognised boolean value, treating as false",
			zap.String("path", path), zap.String("field", field), zap.String("value", s))
	}
	return v
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// EntryConfig holds the [EntryPlugin] section's recognised keys.
type EntryConfig struct {
	PluginName       string
	PluginPath       string
	NxptPath         string
	AutoRunInterface string
	DisableInfoLog   bool
	EnableValidation bool
	IgnorePlugins    []string
}

func parseEntrySection(s *rawSection, path string) EntryConfig {
	var cfg EntryConfig
	if v, ok := s.get("PluginName"); ok {
		cfg.PluginName = v
	}
	if v, ok := s.get("PluginPath"); ok {
		cfg.PluginPath = v
	}
	if v, ok := s.get("NxptPath"); ok {
		cfg.NxptPath = v
	}
	if v, ok := s.get("AutoRunInterface"); ok {
		cfg.AutoRunInterface = v
	}
	if v, ok := s.get("DisableInfoLog"); ok {
		cfg.DisableInfoLog = parseBoolWarn(v, "DisableInfoLog", path)
	}
	if v, ok := s.get("EnableValidation"); ok {
		cfg.EnableValidation = parseBoolWarn(v, "EnableValidation", path)
	}
	if v, ok := s.get("IgnorePlugins"); ok {
		cfg.IgnorePlugins = splitCoalesce(v)
	}
	return cfg
}

func splitCoalesce(s string) []string {
	parts := strings.Split(s, ",")
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// parseRuleSection turns one TransferRule_<N> section into a Rule.
// Unknown keys are ignored silently; missing source/target fields are
// left zero-valued.
func parseRuleSection(s *rawSection, sectionIndex int) Rule {
	r := Rule{
		Enabled:      true,
		Mode:         abi.ModeUnicast,
		SectionIndex: sectionIndex,
	}
	r.Source.Param = -1
	r.Target.Param = -1

	if v, ok := s.get("SourcePlugin"); ok {
		r.Source.Plugin = v
	}
	if v, ok := s.get("SourceInterface"); ok {
		r.Source.Interface = v
	}
	if v, ok := s.get("SourceParamIndex"); ok {
		r.Source.Param = parseIntDefault(v, -1)
	}
	if v, ok := s.get("TargetPlugin"); ok {
		r.Target.Plugin = v
	}
	if v, ok := s.get("TargetPluginPath"); ok {
		r.Target.Path = v
	}
	if v, ok := s.get("TargetInterface"); ok {
		r.Target.Interface = v
	}
	if v, ok := s.get("TargetParamIndex"); ok {
		r.Target.Param = parseIntDefault(v, -1)
	}
	if v, ok := s.get("TargetParamValue"); ok {
		r.TargetConstant = v
		r.HasConstant = true
	}
	if v, ok := s.get("TransferMode"); ok {
		r.Mode = abi.ParseTransferMode(v)
	}
	if v, ok := s.get("Enabled"); ok {
		r.Enabled = v == "true" || v == "1"
	}
	if v, ok := s.get("Condition"); ok {
		r.Condition = abi.ParseCondition(v)
	}
	if v, ok := s.get("Description"); ok {
		r.Description = v
	}
	if v, ok := s.get("MulticastGroup"); ok {
		r.MulticastGroup = v
	}
	if v, ok := s.get("CacheSelf"); ok {
		r.CacheSelf = v == "true" || v == "1"
	}
	if v, ok := s.get("SetGroup"); ok {
		r.SetGroup = v
	}
	return r
}

// isRuleSectionName reports whether name is TransferRule_<N> for a
// non-negative integer N, returning N. Non-monotonic or duplicate N are
// accepted with a warning elsewhere, not rejected here.
func isRuleSectionName(name string) (int, bool) {
	const prefix = "TransferRule_"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
