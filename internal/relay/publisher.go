package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

// Publisher turns tab and session notifications into broker events. It
// implements tabs.Observer.
type Publisher struct {
	broker *Broker
}

func NewPublisher(broker *Broker) *Publisher {
	return &Publisher{broker: broker}
}

// Publish encodes payload and sends it on feed.
func (p *Publisher) Publish(feed, typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("relay encode failed", "feed", feed, "type", typ, "error", err)
		return
	}
	p.broker.Publish(Event{Feed: feed, Type: typ, Payload: string(data)})
}

func (p *Publisher) TabOpened(rec tabs.Record)    { p.Publish(FeedTabs, "tab_opened", rec.Redacted()) }
func (p *Publisher) TabClosed(rec tabs.Record)    { p.Publish(FeedTabs, "tab_closed", rec.Redacted()) }
func (p *Publisher) LoadStarted(rec tabs.Record)  { p.Publish(FeedTabs, "load_started", rec.Redacted()) }
func (p *Publisher) LoadProgress(rec tabs.Record) { p.Publish(FeedTabs, "load_progress", rec.Redacted()) }
func (p *Publisher) LoadFinished(rec tabs.Record) { p.Publish(FeedTabs, "load_finished", rec.Redacted()) }
func (p *Publisher) LoadFailed(rec tabs.Record)   { p.Publish(FeedTabs, "load_failed", rec.Redacted()) }

type loginRequested struct {
	Tab      tabs.Handle `json:"tab"`
	Address  string      `json:"address"`
	Port     int         `json:"port"`
	Username string      `json:"username"`
	Protocol string      `json:"protocol"`
}

func (p *Publisher) LoginRequested(rec tabs.Record, params loginurl.ConnectionParameters) {
	p.Publish(FeedSession, "login_requested", loginRequested{
		Tab:      rec.Handle,
		Address:  params.Address,
		Port:     params.Port,
		Username: params.Username,
		Protocol: params.Protocol,
	})
}

type loginRejected struct {
	Tab    tabs.Handle `json:"tab"`
	URL    string      `json:"url"`
	Reason string      `json:"reason"`
}

func (p *Publisher) LoginRejected(rec tabs.Record, rawURL string, reason error) {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	p.Publish(FeedSession, "login_rejected", loginRejected{Tab: rec.Handle, URL: loginurl.Redact(rawURL), Reason: msg})
}
