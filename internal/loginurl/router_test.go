package loginurl

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyShortInputContinues(t *testing.T) {
	for _, s := range []string{"", "t", "tundra:/", "TUNDRA:/", "http://x"} {
		if got := Classify(s); got.Kind != Continue {
			t.Fatalf("Classify(%q) = %v; want %v", s, got.Kind, Continue)
		}
	}
}

func TestClassifyOrdinaryURLContinues(t *testing.T) {
	got := Classify("http://example.com")
	if got.Kind != Continue {
		t.Fatalf("Classify() = %v; want %v", got.Kind, Continue)
	}
	if got.Reason != nil {
		t.Fatalf("Classify() reason = %v; want nil", got.Reason)
	}
}

func TestClassifyDefaults(t *testing.T) {
	got := Classify("tundra://example.org/?username=bob")
	if got.Kind != LoginRequest {
		t.Fatalf("Classify() = %v; want %v", got.Kind, LoginRequest)
	}
	want := ConnectionParameters{Username: "bob", Protocol: ProtocolTCP, Address: "example.org", Port: DefaultPort}
	if got.Params != want {
		t.Fatalf("Classify() params = %+v; want %+v", got.Params, want)
	}
}

func TestClassifySchemeIsCaseInsensitive(t *testing.T) {
	upper := Classify("TUNDRA://host:1234/?username=bob&address_ignored")
	lower := Classify("tundra://host:1234/?username=bob&address_ignored")
	if upper.Kind != LoginRequest {
		t.Fatalf("Classify(upper) = %v; want %v", upper.Kind, LoginRequest)
	}
	if upper.Kind != lower.Kind || upper.Params != lower.Params {
		t.Fatalf("Classify(upper) = %+v; want %+v", upper, lower)
	}
	if upper.Params.Port != 1234 {
		t.Fatalf("port = %d; want 1234", upper.Params.Port)
	}
}

func TestClassifyMissingUsernameRejected(t *testing.T) {
	got := Classify("tundra://example.org:7777/?protocol=udp")
	if got.Kind != Rejected {
		t.Fatalf("Classify() = %v; want %v", got.Kind, Rejected)
	}
	if !errors.Is(got.Reason, ErrIncompleteParams) {
		t.Fatalf("Classify() reason = %v; want %v", got.Reason, ErrIncompleteParams)
	}
	if got.Params.Protocol != ProtocolUDP || got.Params.Port != 7777 {
		t.Fatalf("Classify() params = %+v; want udp on 7777", got.Params)
	}
}

func TestClassifyMissingAddressRejected(t *testing.T) {
	got := Classify("tundra:///?username=bob")
	if got.Kind != Rejected {
		t.Fatalf("Classify() = %v; want %v", got.Kind, Rejected)
	}
}

func TestClassifyMalformedRejected(t *testing.T) {
	got := Classify("tundra://[::1/?username=bob")
	if got.Kind != Rejected {
		t.Fatalf("Classify() = %v; want %v", got.Kind, Rejected)
	}
	if !errors.Is(got.Reason, ErrMalformedURL) {
		t.Fatalf("Classify() reason = %v; want %v", got.Reason, ErrMalformedURL)
	}
}

func TestClassifyBadPortFallsBackToDefault(t *testing.T) {
	for _, s := range []string{
		"tundra://host:abc/?username=bob",
		"tundra://host:-1/?username=bob",
	} {
		got := Classify(s)
		if got.Kind != LoginRequest {
			t.Fatalf("Classify(%q) = %v; want %v", s, got.Kind, LoginRequest)
		}
		if got.Params.Port != DefaultPort || got.Params.Address != "host" {
			t.Fatalf("Classify(%q) params = %+v; want host on %d", s, got.Params, DefaultPort)
		}
	}
}

func TestClassifyAllFields(t *testing.T) {
	got := Classify("tundra://world.example.org:2346/?username=alice&password=s3cret&avatarurl=http%3A%2F%2Fa%2Favatar.xml&protocol=UDP")
	want := ConnectionParameters{
		Username:  "alice",
		Password:  "s3cret",
		AvatarURL: "http://a/avatar.xml",
		Protocol:  ProtocolUDP,
		Address:   "world.example.org",
		Port:      2346,
	}
	if got.Params != want {
		t.Fatalf("Classify() params = %+v; want %+v", got.Params, want)
	}
}

func TestClassifyUnknownProtocolDefaultsToTCP(t *testing.T) {
	got := Classify("tundra://host/?username=bob&protocol=sctp")
	if got.Params.Protocol != ProtocolTCP {
		t.Fatalf("protocol = %q; want %q", got.Params.Protocol, ProtocolTCP)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	inputs := []string{
		"tundra://example.org/?username=bob",
		"tundra://example.org:7777/?protocol=udp",
		"https://example.com/path",
		"tundra://[::1",
	}
	for _, s := range inputs {
		a, b := Classify(s), Classify(s)
		if a.Kind != b.Kind || a.Params != b.Params || a.Reason != b.Reason {
			t.Fatalf("Classify(%q) not stable: %+v vs %+v", s, a, b)
		}
	}
}

func TestHasScheme(t *testing.T) {
	tests := map[string]bool{
		"tundra://x":  true,
		"Tundra://":   true,
		"tundra:/":    false,
		"xtundra://":  false,
		"https://foo": false,
	}
	for in, want := range tests {
		if got := HasScheme(in); got != want {
			t.Fatalf("HasScheme(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestFormatOmitsPassword(t *testing.T) {
	got := Format(ConnectionParameters{
		Username: "bob",
		Password: "hidden",
		Protocol: ProtocolUDP,
		Address:  "example.org/",
		Port:     2345,
	})
	want := "tundra://example.org:2345/?username=bob&protocol=udp"
	if got != want {
		t.Fatalf("Format() = %q; want %q", got, want)
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("Format() leaked password: %q", got)
	}
}

func TestFormatRoundTripsThroughClassify(t *testing.T) {
	p := ConnectionParameters{Username: "bob", Protocol: ProtocolTCP, Address: "example.org", Port: 7000, AvatarURL: "http://a/b.xml"}
	got := Classify(Format(p))
	if got.Kind != LoginRequest || got.Params != p {
		t.Fatalf("Classify(Format()) = %+v; want %+v", got.Params, p)
	}
}

func TestWorldTitle(t *testing.T) {
	tests := map[string]string{
		"tundra://host:2345/?username=bob&protocol=tcp": "host:2345 as bob",
		"tundra://host:2345/":                           "host:2345",
		"tundra://host/?username=bob":                   "host as bob",
	}
	for in, want := range tests {
		if got := WorldTitle(in); got != want {
			t.Fatalf("WorldTitle(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := map[string]string{
		"example.com":          "http://example.com",
		" https://example.com": "https://example.com",
		"about:blank":          "about:blank",
		"":                     "",
	}
	for in, want := range tests {
		if got := NormalizeInput(in); got != want {
			t.Fatalf("NormalizeInput(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestShortLabel(t *testing.T) {
	tests := map[string]string{
		"http://example.com/":                        "example.com",
		"https://www.example.com/a/very/long/path/x": "www.example.com/a/ve...",
		"tundra://host:2345":                         "host:2345",
		"Loading...":                                 "Loading...",
	}
	for in, want := range tests {
		if got := ShortLabel(in); got != want {
			t.Fatalf("ShortLabel(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"tundra://:7777/?username=bob&password=hunter2":    "tundra://:7777/?username=bob",
		"TUNDRA://h/?Password=x&username=bob&protocol=udp": "TUNDRA://h/?username=bob&protocol=udp",
		"tundra://h/?pass%77ord=x#frag":                    "tundra://h/#frag",
		"tundra://h:2345/?username=bob":                    "tundra://h:2345/?username=bob",
		"http://example.com/?password=kept":                "http://example.com/?password=kept",
		"short":                                            "short",
	}
	for in, want := range tests {
		if got := Redact(in); got != want {
			t.Fatalf("Redact(%q) = %q; want %q", in, got, want)
		}
	}
}
