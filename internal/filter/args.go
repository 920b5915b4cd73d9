package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseArgs parses key=value tokens, as typed on a command line or in chat,
// into criteria.
func ParseArgs(args []string) (Criteria, error) {
	q := url.Values{}
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return Criteria{}, fmt.Errorf("invalid filter %q: expected key=value", arg)
		}
		q.Add(strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value))
	}
	return FromQuery(q), nil
}
