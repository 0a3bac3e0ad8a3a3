package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfigPatchRule is a substitution applied to the full text of wp-config.php.
// Exactly one of Literal or Pattern is set. With a Pattern, only the first
// capture group is replaced so the surrounding formatting is kept.
type ConfigPatchRule struct {
	Key         string
	Description string
	Literal     string
	Pattern     *regexp.Regexp
	Replacement string
	AppliesIf   func(Settings) bool
}

// Apply returns the patched text and whether it differs from the input.
// A rule that does not match is not an error: it is already applied or does
// not concern this configuration.
func (r ConfigPatchRule) Apply(text string, settings Settings) (string, bool) {
	if r.AppliesIf != nil && !r.AppliesIf(settings) {
		return text, false
	}

	var patched string
	if r.Pattern != nil {
		patched = r.Pattern.ReplaceAllStringFunc(text, func(match string) string {
			loc := r.Pattern.FindStringSubmatchIndex(match)
			if len(loc) < 4 || loc[2] < 0 {
				return r.Replacement
			}
			return match[:loc[2]] + r.Replacement + match[loc[3]:]
		})
	} else if r.Literal != "" {
		patched = strings.ReplaceAll(text, r.Literal, r.Replacement)
	} else {
		return text, false
	}

	return patched, patched != text
}

// ApplyRules runs every rule in order and returns the keys of the rules that
// changed the text.
func ApplyRules(text string, rules []ConfigPatchRule, settings Settings) (string, []string) {
	var applied []string
	for _, rule := range rules {
		var changed bool
		text, changed = rule.Apply(text, settings)
		if changed {
			applied = append(applied, rule.Key)
		}
	}
	return text, applied
}

// DefineRule builds a rule rewriting the value of define( 'KEY', ... ).
// value is a PHP literal, e.g. 'db', true or '512M' quoted with PHPString.
func DefineRule(key string, value string) ConfigPatchRule {
	pattern := fmt.Sprintf(`define\(\s*['"]%s['"]\s*,\s*('(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"|true|false|TRUE|FALSE|-?\d+)\s*\)`, regexp.QuoteMeta(key))
	return ConfigPatchRule{
		Key:         key,
		Description: fmt.Sprintf("%s set to %s", key, value),
		Pattern:     regexp.MustCompile(pattern),
		Replacement: value,
	}
}

// PHPString quotes s as a single quoted PHP string literal.
func PHPString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func PHPBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var tablePrefixPattern = regexp.MustCompile(`\$table_prefix\s*=\s*['"]([A-Za-z0-9_]+)['"]`)

// TablePrefix reads $table_prefix from a wp-config.php text.
func TablePrefix(text string) string {
	if m := tablePrefixPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "wp_"
}
