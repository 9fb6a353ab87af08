// Package bookmarks keeps the world and web bookmark lists. Both lists live
// as JSON arrays inside the browser settings store.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgnsrekt/loginbrowser/internal/config"
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

type Kind string

const (
	Worlds Kind = "worlds"
	Web    Kind = "web"
)

var (
	ErrNotFound    = errors.New("bookmark not found")
	ErrInvalid     = errors.New("invalid bookmark")
	ErrUnknownKind = errors.New("unknown bookmark kind")
)

// Bookmark is one saved entry.
type Bookmark struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// KindFor files tundra:// URLs under worlds and everything else under web.
func KindFor(url string) Kind {
	if loginurl.HasScheme(url) {
		return Worlds
	}
	return Web
}

// Store manages both bookmark lists.
type Store struct {
	settings *config.Store
	mu       sync.RWMutex
	lists    map[Kind][]Bookmark
}

// Open reads the bookmark lists from the settings store.
func Open(settings *config.Store) (*Store, error) {
	s := &Store{settings: settings, lists: make(map[Kind][]Bookmark)}
	for _, kind := range []Kind{Worlds, Web} {
		raw := settings.Get(config.SectionBookmarks, string(kind), "")
		if strings.TrimSpace(raw) == "" {
			s.lists[kind] = []Bookmark{}
			continue
		}
		var list []Bookmark
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("bookmark store: decode %s: %w", kind, err)
		}
		s.lists[kind] = list
	}
	return s, nil
}

func (s *Store) List(kind Kind) ([]Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return append([]Bookmark(nil), list...), nil
}

// Add appends a bookmark to the list matching its URL and returns that list's kind.
func (s *Store) Add(title, url string) (Kind, error) {
	b, err := clean(title, url)
	if err != nil {
		return "", err
	}
	kind := KindFor(b.URL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[kind] = append(s.lists[kind], b)
	if err := s.persistLocked(kind); err != nil {
		s.lists[kind] = s.lists[kind][:len(s.lists[kind])-1]
		return "", err
	}
	slog.Info("bookmark added", "kind", kind, "title", b.Title)
	return kind, nil
}

// Edit replaces the bookmark at index. The URL must stay in the same list.
func (s *Store) Edit(kind Kind, index int, title, url string) error {
	b, err := clean(title, url)
	if err != nil {
		return err
	}
	if KindFor(b.URL) != kind {
		return fmt.Errorf("%w: %s url in %s list", ErrInvalid, KindFor(b.URL), kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.listLocked(kind, index)
	if err != nil {
		return err
	}
	prev := list[index]
	list[index] = b
	if err := s.persistLocked(kind); err != nil {
		list[index] = prev
		return err
	}
	return nil
}

func (s *Store) Remove(kind Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.listLocked(kind, index)
	if err != nil {
		return err
	}
	prev := list
	s.lists[kind] = append(append([]Bookmark{}, list[:index]...), list[index+1:]...)
	if err := s.persistLocked(kind); err != nil {
		s.lists[kind] = prev
		return err
	}
	return nil
}

// Move shifts the bookmark at index by delta positions, clamped to the
// list bounds, and returns its new index.
func (s *Store) Move(kind Kind, index, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.listLocked(kind, index)
	if err != nil {
		return 0, err
	}
	to := index + delta
	if to < 0 {
		to = 0
	}
	if to > len(list)-1 {
		to = len(list) - 1
	}
	if to == index {
		return index, nil
	}
	item := list[index]
	if to < index {
		copy(list[to+1:index+1], list[to:index])
	} else {
		copy(list[index:to], list[index+1:to+1])
	}
	list[to] = item
	if err := s.persistLocked(kind); err != nil {
		return 0, err
	}
	return to, nil
}

func (s *Store) listLocked(kind Kind, index int) ([]Bookmark, error) {
	list, ok := s.lists[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNotFound, kind, index)
	}
	return list, nil
}

func (s *Store) persistLocked(kind Kind) error {
	data, err := json.Marshal(s.lists[kind])
	if err != nil {
		return fmt.Errorf("bookmark store: encode %s: %w", kind, err)
	}
	s.settings.Set(config.SectionBookmarks, string(kind), string(data))
	if err := s.settings.Save(); err != nil {
		return fmt.Errorf("bookmark store: %w", err)
	}
	return nil
}

func clean(title, url string) (Bookmark, error) {
	b := Bookmark{Title: strings.TrimSpace(title), URL: strings.TrimSpace(url)}
	if b.Title == "" {
		return Bookmark{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if b.URL == "" {
		return Bookmark{}, fmt.Errorf("%w: url is required", ErrInvalid)
	}
	if !loginurl.HasScheme(b.URL) {
		b.URL = loginurl.NormalizeInput(b.URL)
	}
	return b, nil
}
