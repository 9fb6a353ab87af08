package cdp

import (
	"sort"
	"sync"

	"github.com/chromedp/cdproto/target"

	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

// TargetInfo ties a browser target to the tab it renders.
type TargetInfo struct {
	TargetID string      `json:"target_id"`
	Handle   tabs.Handle `json:"handle"`
	URL      string      `json:"url"`
}

// TabRegistry maps CDP target IDs to tab handles.
type TabRegistry struct {
	mu       sync.RWMutex
	byTarget map[target.ID]*TargetInfo
	byHandle map[tabs.Handle]target.ID
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{
		byTarget: make(map[target.ID]*TargetInfo),
		byHandle: make(map[tabs.Handle]target.ID),
	}
}

func (r *TabRegistry) Register(targetID target.ID, h tabs.Handle, url string) TargetInfo {
	info := &TargetInfo{TargetID: string(targetID), Handle: h, URL: url}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byHandle[h]; ok && old != targetID {
		delete(r.byTarget, old)
	}
	r.byTarget[targetID] = info
	r.byHandle[h] = targetID
	return *info
}

// UpdateURL records the last committed URL of a target.
func (r *TabRegistry) UpdateURL(h tabs.Handle, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byHandle[h]; ok {
		r.byTarget[id].URL = url
	}
}

func (r *TabRegistry) Handle(targetID target.ID) (tabs.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byTarget[targetID]
	if !ok {
		return 0, false
	}
	return info.Handle, true
}

func (r *TabRegistry) Target(h tabs.Handle) (target.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHandle[h]
	return id, ok
}

func (r *TabRegistry) Remove(h tabs.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byHandle[h]; ok {
		delete(r.byTarget, id)
		delete(r.byHandle, h)
	}
}

// List returns the registered targets ordered by tab handle.
func (r *TabRegistry) List() []TargetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TargetInfo, 0, len(r.byTarget))
	for _, info := range r.byTarget {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (r *TabRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTarget)
}
