package api

import "strings"

// PathNormalizer maps a router path template onto the canonical form used as
// a RouteKey pattern. The gateway applies it to registry keys and to the
// pattern of every inbound request, so both sides must speak the syntax it
// understands. A template it cannot translate simply never matches, and the
// route passes through unvalidated.
type PathNormalizer func(pattern string) string

// NormalizePath is the default PathNormalizer. It accepts Express style
// (":id"), OpenAPI style ("{id}") and ServeMux style ("{id...}", "{$}")
// placeholders and emits "{id}". A trailing slash is dropped.
func NormalizePath(pattern string) string {
	if pattern == "" || pattern == "/" {
		return "/"
	}

	segs := strings.Split(strings.Trim(pattern, "/"), "/")
	out := segs[:0]
	for _, seg := range segs {
		switch {
		case seg == "{$}":
			continue
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			seg = "{" + strings.TrimSuffix(seg[1:], "?") + "}"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "...}"):
			seg = strings.TrimSuffix(seg, "...}") + "}"
		}
		out = append(out, seg)
	}

	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

// ExactPath is a PathNormalizer that leaves templates untouched. Registry keys
// must then use the router's own placeholder syntax verbatim.
func ExactPath(pattern string) string { return pattern }

// templateParams returns the wildcard names declared in a ServeMux pattern.
func templateParams(pattern string) []string {
	var names []string
	for seg := range strings.SplitSeq(pattern, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") || seg == "{$}" {
			continue
		}
		name := strings.TrimSuffix(strings.Trim(seg, "{}"), "...")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// splitPattern separates the optional method prefix of a ServeMux pattern
// ("GET /items/{id}") from its path.
func splitPattern(pattern string) (method, path string) {
	if m, p, ok := strings.Cut(pattern, " "); ok {
		return m, strings.TrimSpace(p)
	}
	return "", pattern
}
