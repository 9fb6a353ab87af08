// Package loginurl recognises tundra:// login URLs inside ordinary web
// navigation and turns them into connection parameters.
package loginurl

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	Scheme      = "tundra://"
	DefaultPort = 2345
)

const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

var (
	ErrMalformedURL     = errors.New("malformed login url")
	ErrIncompleteParams = errors.New("login url is missing username or address")
)

// Kind tags an Action.
type Kind int

const (
	Continue Kind = iota
	LoginRequest
	Rejected
)

func (k Kind) String() string {
	switch k {
	case LoginRequest:
		return "login_request"
	case Rejected:
		return "rejected"
	default:
		return "continue"
	}
}

// ConnectionParameters is what a tundra:// URL carries.
type ConnectionParameters struct {
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Protocol  string `json:"protocol"`
	Address   string `json:"address"`
	Port      int    `json:"port"`
}

// Valid reports whether the parameters are enough to log in.
func (p ConnectionParameters) Valid() bool {
	return p.Username != "" && p.Address != ""
}

// Action is the classification of a navigation URL. Params is only
// meaningful for LoginRequest, Reason only for Rejected.
type Action struct {
	Kind   Kind
	Params ConnectionParameters
	Reason error
}

// HasScheme compares the first 9 characters against "tundra://", ignoring case.
func HasScheme(s string) bool {
	if len(s) < len(Scheme) {
		return false
	}
	return strings.EqualFold(s[:len(Scheme)], Scheme)
}

// Classify decides whether rawURL is ordinary navigation or a login request.
// It never panics and never returns an error; malformed input is Rejected.
func Classify(rawURL string) Action {
	if !HasScheme(rawURL) {
		return Action{Kind: Continue}
	}

	params, err := Parse(rawURL)
	if err != nil {
		return Action{Kind: Rejected, Reason: err}
	}
	if !params.Valid() {
		return Action{Kind: Rejected, Params: params, Reason: ErrIncompleteParams}
	}
	return Action{Kind: LoginRequest, Params: params}
}

// Parse extracts connection parameters from a URL without checking validity.
func Parse(rawURL string) (ConnectionParameters, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		u, err = parseWithoutPort(rawURL)
		if err != nil {
			return ConnectionParameters{}, ErrMalformedURL
		}
	}

	q := u.Query()
	params := ConnectionParameters{
		Username:  q.Get("username"),
		Password:  q.Get("password"),
		AvatarURL: q.Get("avatarurl"),
		Protocol:  normalizeProtocol(q.Get("protocol")),
		Address:   u.Hostname(),
		Port:      DefaultPort,
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			params.Port = n
		}
	}
	return params, nil
}

// parseWithoutPort retries a parse with the port stripped from the
// authority, so an unparseable port falls back to the default instead of
// rejecting the whole URL.
func parseWithoutPort(rawURL string) (*url.URL, error) {
	s := strings.TrimSpace(rawURL)
	if !HasScheme(s) {
		return nil, ErrMalformedURL
	}
	rest := s[len(Scheme):]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority := rest[:end]
	if strings.HasPrefix(authority, "[") {
		return nil, ErrMalformedURL
	}
	i := strings.LastIndex(authority, ":")
	if i < 0 {
		return nil, ErrMalformedURL
	}
	return url.Parse(Scheme + authority[:i] + rest[end:])
}

func normalizeProtocol(p string) string {
	if strings.EqualFold(strings.TrimSpace(p), ProtocolUDP) {
		return ProtocolUDP
	}
	return ProtocolTCP
}
