package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/loginbrowser/internal/relay"
)

func readLines(t *testing.T, path string) []line {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var out []line
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		out = append(out, l)
	}
	return out
}

func TestWriteSplitsByFeedAndDate(t *testing.T) {
	dir := t.TempDir()
	j := New(dir, 1)
	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	j.now = func() time.Time { return day }

	evts := []relay.Event{
		{ID: "1", Feed: relay.FeedTabs, Type: "tab_opened", Payload: `{"handle":1}`},
		{ID: "2", Feed: relay.FeedSession, Type: "login_requested", Payload: `{"username":"bob"}`},
		{ID: "3", Feed: relay.FeedTabs, Type: "tab_closed", Payload: `{"handle":1}`},
	}
	for _, evt := range evts {
		if err := j.Write(evt); err != nil {
			t.Fatalf("Write(%s) error = %v", evt.ID, err)
		}
	}
	day = day.Add(2 * time.Minute)
	if err := j.Write(relay.Event{ID: "4", Feed: relay.FeedTabs, Type: "tab_opened"}); err != nil {
		t.Fatalf("Write(4) error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tabsDay1 := readLines(t, filepath.Join(dir, "2026-03-01", "tabs.jsonl"))
	if len(tabsDay1) != 2 || tabsDay1[0].ID != "1" || tabsDay1[1].ID != "3" {
		t.Fatalf("day 1 tabs = %+v", tabsDay1)
	}
	if string(tabsDay1[0].Payload) != `{"handle":1}` {
		t.Fatalf("payload = %s", tabsDay1[0].Payload)
	}
	session := readLines(t, filepath.Join(dir, "2026-03-01", "session.jsonl"))
	if len(session) != 1 || session[0].Type != "login_requested" {
		t.Fatalf("session = %+v", session)
	}
	tabsDay2 := readLines(t, filepath.Join(dir, "2026-03-02", "tabs.jsonl"))
	if len(tabsDay2) != 1 || tabsDay2[0].ID != "4" {
		t.Fatalf("day 2 tabs = %+v", tabsDay2)
	}
}

func TestWriteAfterClose(t *testing.T) {
	j := New(t.TempDir(), 0)
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := j.Write(relay.Event{Feed: relay.FeedTabs}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Write() error = %v; want ErrClosed", err)
	}
}

func TestRunWritesBrokerEvents(t *testing.T) {
	dir := t.TempDir()
	j := New(dir, 1)
	broker := relay.NewBroker()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, broker)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for broker.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("journal never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	evt := broker.Publish(relay.Event{Feed: relay.FeedToolbar, Type: "toolbar", Payload: `{"progress":40}`})

	path := filepath.Join(dir, evt.Time.Format("2006-01-02"), "toolbar.jsonl")
	for {
		if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("toolbar event never written")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	_ = j.Close()

	got := readLines(t, path)
	if len(got) != 1 || got[0].ID != evt.ID {
		t.Fatalf("lines = %+v; want event %s", got, evt.ID)
	}
}
