package bookmarks

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/loginbrowser/internal/config"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "browsersettings.yaml")
	settings, err := config.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	s, err := Open(settings)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s, path
}

func TestAddSortsByScheme(t *testing.T) {
	s, _ := newStore(t)

	kind, err := s.Add("home world", "tundra://world.example.org:7000/?username=bob")
	if err != nil || kind != Worlds {
		t.Fatalf("Add(tundra) = %q, %v; want worlds", kind, err)
	}
	kind, err = s.Add("portal", "portal.example.org")
	if err != nil || kind != Web {
		t.Fatalf("Add(web) = %q, %v; want web", kind, err)
	}

	web, _ := s.List(Web)
	if len(web) != 1 || web[0].URL != "http://portal.example.org" {
		t.Fatalf("List(web) = %+v; want normalized url", web)
	}
	worlds, _ := s.List(Worlds)
	if len(worlds) != 1 || worlds[0].Title != "home world" {
		t.Fatalf("List(worlds) = %+v", worlds)
	}
}

func TestAddRequiresTitle(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.Add("  ", "http://example.org/"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Add() error = %v; want ErrInvalid", err)
	}
}

func TestPersistAcrossReopen(t *testing.T) {
	s, path := newStore(t)
	if _, err := s.Add("a", "http://a.example.org/"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := s.Add("b", "http://b.example.org/"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Remove(Web, 0); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	settings, err := config.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if !settings.HasValue(config.SectionBookmarks, string(Worlds)) {
		t.Fatal("worlds list not written")
	}
	reopened, err := Open(settings)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	web, _ := reopened.List(Web)
	if len(web) != 1 || web[0].Title != "b" {
		t.Fatalf("List(web) after reopen = %+v; want [b]", web)
	}
}

func TestEmptyListIsStillWritten(t *testing.T) {
	s, path := newStore(t)
	if _, err := s.Add("only", "http://only.example.org/"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Remove(Web, 0); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	settings, _ := config.OpenStore(path)
	if got := settings.Get(config.SectionBookmarks, string(Web), ""); got != "[]" {
		t.Fatalf("stored web list = %q; want []", got)
	}
}

func TestMove(t *testing.T) {
	s, _ := newStore(t)
	for _, title := range []string{"a", "b", "c"} {
		if _, err := s.Add(title, "http://"+title+".example.org/"); err != nil {
			t.Fatalf("Add(%s) error = %v", title, err)
		}
	}

	to, err := s.Move(Web, 0, 1)
	if err != nil || to != 1 {
		t.Fatalf("Move(0, +1) = %d, %v; want 1", to, err)
	}
	to, err = s.Move(Web, 2, -5)
	if err != nil || to != 0 {
		t.Fatalf("Move(2, -5) = %d, %v; want 0", to, err)
	}
	to, err = s.Move(Web, 2, 1)
	if err != nil || to != 2 {
		t.Fatalf("Move(last, +1) = %d, %v; want 2", to, err)
	}

	list, _ := s.List(Web)
	got := list[0].Title + list[1].Title + list[2].Title
	if got != "cba" {
		t.Fatalf("order = %q; want cba", got)
	}
}

func TestEditKeepsKind(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.Add("portal", "http://portal.example.org/"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Edit(Web, 0, "world", "tundra://w.example.org/?username=x"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Edit() cross kind error = %v; want ErrInvalid", err)
	}
	if err := s.Edit(Web, 0, "renamed", "http://portal.example.org/"); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	list, _ := s.List(Web)
	if list[0].Title != "renamed" {
		t.Fatalf("Title = %q; want renamed", list[0].Title)
	}
}

func TestIndexErrors(t *testing.T) {
	s, _ := newStore(t)
	if err := s.Remove(Worlds, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove() error = %v; want ErrNotFound", err)
	}
	if _, err := s.List(Kind("ftp")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("List() error = %v; want ErrUnknownKind", err)
	}
}
