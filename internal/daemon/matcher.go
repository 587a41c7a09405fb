package daemon

import (
	"strings"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/platform"
)

// Matcher decides which windows are tracked.
type Matcher struct {
	rules []config.WindowMatch
}

func NewMatcher(rules []config.WindowMatch) *Matcher {
	return &Matcher{rules: append([]config.WindowMatch(nil), rules...)}
}

// Empty reports whether no rules are configured, in which case only the
// window active at startup is tracked.
func (m *Matcher) Empty() bool {
	return len(m.rules) == 0
}

// Match reports whether any rule selects w.
func (m *Matcher) Match(w platform.Window) bool {
	for _, rule := range m.rules {
		if matchRule(rule, w) {
			return true
		}
	}
	return false
}

func matchRule(rule config.WindowMatch, w platform.Window) bool {
	class := strings.TrimSpace(rule.Class)
	title := strings.TrimSpace(rule.Title)
	if class == "" && title == "" {
		return false
	}
	if class != "" && !strings.EqualFold(class, w.AppID) {
		return false
	}
	if title != "" && !strings.Contains(w.Title, title) {
		return false
	}
	return true
}
