package loginurl

import (
	"net/url"
	"strconv"
	"strings"
)

const labelMax = 23

// Format builds the address-bar form of an active login. The password is
// never included.
func Format(p ConnectionParameters) string {
	address := strings.TrimSuffix(p.Address, "/")
	port := p.Port
	if port <= 0 {
		port = DefaultPort
	}

	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(address)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(port))
	b.WriteString("/?username=")
	b.WriteString(url.QueryEscape(p.Username))
	if p.Protocol != "" {
		b.WriteString("&protocol=")
		b.WriteString(url.QueryEscape(p.Protocol))
	}
	if p.AvatarURL != "" {
		b.WriteString("&avatarurl=")
		b.WriteString(url.QueryEscape(p.AvatarURL))
	}
	return b.String()
}

// WorldTitle derives a bookmark title from a world URL, e.g.
// "tundra://host:2345/?username=bob" becomes "host:2345 as bob".
func WorldTitle(rawURL string) string {
	rest := rawURL
	if HasScheme(rest) {
		rest = rest[len(Scheme):]
	}
	title := rest
	if i := strings.Index(title, "/"); i > 0 {
		title = title[:i]
	} else if i := strings.Index(title, "?"); i > 0 {
		title = title[:i]
	}
	if params, err := Parse(Scheme + rest); err == nil && params.Username != "" {
		title += " as " + params.Username
	}
	return title
}

// NormalizeInput turns address-bar text into a URL. Input without a scheme
// is assumed to be http.
func NormalizeInput(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return s
	}
	if strings.Contains(s, "://") || strings.HasPrefix(strings.ToLower(s), "about:") {
		return s
	}
	return "http://" + s
}

// ShortLabel shortens a URL or title for a tab strip.
func ShortLabel(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "http://"):
		name = name[len("http://"):]
	case strings.HasPrefix(lower, "https://"):
		name = name[len("https://"):]
	case HasScheme(name):
		name = name[len(Scheme):]
	}
	name = strings.TrimSuffix(name, "/")
	if len(name) > labelMax {
		name = name[:20] + "..."
	}
	return name
}

// Redact drops the password query parameter from a login URL so it can be
// logged or published. Other URLs are returned unchanged.
func Redact(rawURL string) string {
	if !HasScheme(rawURL) {
		return rawURL
	}
	q := strings.IndexByte(rawURL, '?')
	if q < 0 {
		return rawURL
	}
	base, query, fragment := rawURL[:q], rawURL[q+1:], ""
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query, fragment = query[:i], query[i:]
	}
	kept := make([]string, 0, strings.Count(query, "&")+1)
	for _, part := range strings.Split(query, "&") {
		key, _, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if strings.EqualFold(key, "password") {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return base + fragment
	}
	return base + "?" + strings.Join(kept, "&") + fragment
}
