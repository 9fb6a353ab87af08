// Package tabs owns the browser tab strip: one permanent home tab at index 0
// and any number of web tabs, each with its own load state machine.
//
// A Set is not safe for concurrent use. Callers serialise access the way a
// UI event loop would.
package tabs

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

// Handle identifies a tab for its whole lifetime. Indexes shift when tabs
// close; handles do not.
type Handle int

// Home is the handle of the permanent login tab.
const Home Handle = 0

const (
	homeLabel     = "Login"
	loadingLabel  = "Loading..."
	loadErrLabel  = "Page Load Error"
	errorPageHTML = "<p>The page could not be loaded...</p>"
)

// ErrUnknownTab is returned for handles that were never opened or are closed.
var ErrUnknownTab = errors.New("unknown tab")

type LoadState int

const (
	Idle LoadState = iota
	Loading
	Finished
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LoadState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "loading":
		*s = Loading
	case "finished":
		*s = Finished
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("unknown load state %q", b)
	}
	return nil
}

// Record is a snapshot of one tab.
type Record struct {
	Handle       Handle    `json:"handle"`
	Index        int       `json:"index"`
	URL          string    `json:"url"`
	RequestedURL string    `json:"requested_url,omitempty"`
	Title        string    `json:"title,omitempty"`
	Label        string    `json:"label"`
	State        LoadState `json:"state"`
	Progress     int       `json:"progress"`
}

// Redacted returns the record with login passwords removed from its URLs.
func (r Record) Redacted() Record {
	r.URL = loginurl.Redact(r.URL)
	r.RequestedURL = loginurl.Redact(r.RequestedURL)
	return r
}

// Observer receives tab lifecycle notifications. All methods are called
// synchronously from the Set operation that caused them.
type Observer interface {
	TabOpened(rec Record)
	TabClosed(rec Record)
	LoadStarted(rec Record)
	LoadProgress(rec Record)
	LoadFinished(rec Record)
	LoadFailed(rec Record)
	LoginRequested(rec Record, params loginurl.ConnectionParameters)
	LoginRejected(rec Record, rawURL string, reason error)
}

// Engine is the host web view that actually fetches pages. Implementations
// must not block: page loads are reported back through the Set callbacks.
type Engine interface {
	Load(h Handle, url string)
	Stop(h Handle)
	Reload(h Handle)
	Back(h Handle)
	Forward(h Handle)
	RenderError(h Handle, html string)
	Close(h Handle)
}

// Set is the tab strip.
type Set struct {
	engine    Engine
	observers []Observer

	order   []Handle
	records map[Handle]*Record
	current int
	next    Handle
}

func NewSet(engine Engine, observers ...Observer) *Set {
	s := &Set{
		engine:    engine,
		observers: observers,
		records:   make(map[Handle]*Record),
		next:      Home + 1,
	}
	s.records[Home] = &Record{Handle: Home, Label: homeLabel, State: Idle}
	s.order = []Handle{Home}
	return s
}

// OpenTab appends a web tab and starts loading url in it.
func (s *Set) OpenTab(url string, focus bool) Handle {
	h := s.next
	s.next++

	rec := &Record{Handle: h, RequestedURL: url, State: Idle}
	s.records[h] = rec
	s.order = append(s.order, h)
	rec.Index = len(s.order) - 1
	if focus {
		s.current = rec.Index
	}

	s.notify(func(o Observer) { o.TabOpened(*rec) })
	s.engine.Load(h, url)
	return h
}

// CloseTab removes a web tab. Closing the home tab or an unknown tab does nothing.
func (s *Set) CloseTab(h Handle) {
	if h == Home {
		return
	}
	rec, ok := s.records[h]
	if !ok {
		return
	}

	s.engine.Stop(h)
	s.engine.Close(h)

	idx := rec.Index
	delete(s.records, h)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	s.reindex()
	if s.current >= len(s.order) {
		s.current = len(s.order) - 1
	} else if s.current > idx {
		s.current--
	}

	closed := *rec
	s.notify(func(o Observer) { o.TabClosed(closed) })
}

// Navigate starts a fresh load in an existing web tab.
func (s *Set) Navigate(h Handle, url string) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	s.rearm(rec, url)
	s.engine.Load(h, url)
	return nil
}

// Reload reloads the tab's current page.
func (s *Set) Reload(h Handle) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	target := rec.URL
	if target == "" {
		target = rec.RequestedURL
	}
	s.rearm(rec, target)
	s.engine.Reload(h)
	return nil
}

// Track records a navigation the engine started on its own, such as a link
// click, so the following load callbacks are accepted.
func (s *Set) Track(h Handle, url string) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	if rec.State == Loading && rec.RequestedURL == url {
		return nil
	}
	s.rearm(rec, url)
	return nil
}

func (s *Set) Stop(h Handle) error {
	if _, err := s.web(h); err != nil {
		return err
	}
	s.engine.Stop(h)
	return nil
}

func (s *Set) Back(h Handle) error {
	if _, err := s.web(h); err != nil {
		return err
	}
	s.engine.Back(h)
	return nil
}

func (s *Set) Forward(h Handle) error {
	if _, err := s.web(h); err != nil {
		return err
	}
	s.engine.Forward(h)
	return nil
}

// SetURL updates the committed URL and title of a tab.
func (s *Set) SetURL(h Handle, url, title string) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	rec.URL = url
	if title != "" {
		rec.Title = title
	}
	return nil
}

func (s *Set) OnLoadStarted(h Handle) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	if rec.State != Idle {
		return fmt.Errorf("tab %d: load started while %s", h, rec.State)
	}
	rec.State = Loading
	rec.Progress = 0
	rec.Label = loadingLabel
	s.notify(func(o Observer) { o.LoadStarted(*rec) })
	return nil
}

func (s *Set) OnLoadProgress(h Handle, percent int) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	if rec.State != Loading {
		return nil
	}
	rec.Progress = clampPercent(percent)
	s.notify(func(o Observer) { o.LoadProgress(*rec) })
	return nil
}

// OnLoadFinished ends a load. Only a loading tab accepts it, so the result
// of a navigation that was replaced before it started is dropped. A failed
// load first re-classifies the originally requested URL, since a redirect to
// a tundra:// URL shows up as a failure in the web engine.
func (s *Set) OnLoadFinished(h Handle, success bool) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	if rec.State != Loading {
		return fmt.Errorf("tab %d: load finished while %s", h, rec.State)
	}

	if success {
		rec.State = Finished
		rec.Progress = 100
		if rec.URL == "" || rec.URL == "about:blank" {
			rec.Label = loadErrLabel
			rec.URL = ""
		} else {
			rec.Label = loginurl.ShortLabel(rec.URL)
		}
		s.notify(func(o Observer) { o.LoadFinished(*rec) })
		return nil
	}

	rec.State = Failed
	if s.route(rec, rec.RequestedURL) {
		return nil
	}

	rec.Label = loadErrLabel
	s.engine.RenderError(h, errorPageHTML)
	s.notify(func(o Observer) { o.LoadFailed(*rec) })
	return nil
}

// OnUnsupportedContent handles a URL the web engine refused to load itself.
func (s *Set) OnUnsupportedContent(h Handle, url string) error {
	rec, err := s.web(h)
	if err != nil {
		return err
	}
	s.route(rec, url)
	return nil
}

// RouteFrom classifies url on behalf of tab h, which may be the home tab.
// It reports whether url was a tundra:// URL.
func (s *Set) RouteFrom(h Handle, url string) (bool, error) {
	rec, ok := s.records[h]
	if !ok {
		return false, ErrUnknownTab
	}
	return s.route(rec, url), nil
}

func (s *Set) route(rec *Record, url string) bool {
	action := loginurl.Classify(url)
	switch action.Kind {
	case loginurl.LoginRequest:
		snapshot := *rec
		s.notify(func(o Observer) { o.LoginRequested(snapshot, action.Params) })
		return true
	case loginurl.Rejected:
		snapshot := *rec
		s.notify(func(o Observer) { o.LoginRejected(snapshot, url, action.Reason) })
		return true
	default:
		return false
	}
}

// SetCurrent focuses the tab at index.
func (s *Set) SetCurrent(index int) error {
	if index < 0 || index >= len(s.order) {
		return fmt.Errorf("tab index %d out of range: %w", index, ErrUnknownTab)
	}
	s.current = index
	return nil
}

// SetHomeLabel changes the home tab's label and URL text.
func (s *Set) SetHomeLabel(label, url string) {
	home := s.records[Home]
	home.Label = label
	home.URL = url
}

func (s *Set) Current() Record {
	return *s.records[s.order[s.current]]
}

func (s *Set) Get(h Handle) (Record, bool) {
	rec, ok := s.records[h]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (s *Set) List() []Record {
	out := make([]Record, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, *s.records[h])
	}
	return out
}

func (s *Set) Len() int { return len(s.order) }

func (s *Set) web(h Handle) (*Record, error) {
	if h == Home {
		return nil, fmt.Errorf("tab %d is the home tab: %w", h, ErrUnknownTab)
	}
	rec, ok := s.records[h]
	if !ok {
		return nil, fmt.Errorf("tab %d: %w", h, ErrUnknownTab)
	}
	return rec, nil
}

func (s *Set) rearm(rec *Record, url string) {
	rec.RequestedURL = url
	rec.State = Idle
	rec.Progress = 0
}

func (s *Set) reindex() {
	for i, h := range s.order {
		s.records[h].Index = i
	}
}

func (s *Set) notify(fn func(Observer)) {
	for _, o := range s.observers {
		fn(o)
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
