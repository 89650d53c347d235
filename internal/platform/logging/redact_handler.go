package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders are lowercase header names whose values never reach the
// logs. The HTTP logging middleware redacts them before logging and the
// handler-level masq filter catches them again under the same names.
var SensitiveHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
	"cookie":        true,
}

// redactRules lists what the log handler masks regardless of call site.
var redactRules = struct {
	fields   []string
	prefixes []string
	patterns []*regexp.Regexp
}{
	// customer and tracking_code are personal data on orders and shipments.
	fields:   []string{"customer", "tracking_code", "password", "secret", "token"},
	prefixes: []string{"secret_", "api_key"},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
		// Three dot-separated segments of 10+ characters; shorter runs are
		// version strings, not tokens.
		regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
		regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
	},
}

// newRedactAttr builds the masq ReplaceAttr used by every handler New
// returns.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	var opts []masq.Option
	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range redactRules.fields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, prefix := range redactRules.prefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}
	for _, re := range redactRules.patterns {
		opts = append(opts, masq.WithRegex(re))
	}
	return masq.New(opts...)
}
