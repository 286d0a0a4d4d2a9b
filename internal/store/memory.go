package store

import (
	"context"
	"sort"
	"sync"

	"family-atlas/internal/model"
)

type ownerData struct {
	persons   []model.Person
	links     []model.FamilyLink
	events    []model.Event
	members   []model.Member
	relations []model.Relationship
}

// 文档注释：进程内仓库
// 背景：与 Store 提供相同的方法集，用于 --dry-run 与测试；读写返回副本，调用方修改不会影响已存数据。
type Memory struct {
	mu     sync.RWMutex
	owners map[string]*ownerData
}

func NewMemory() *Memory { return &Memory{owners: map[string]*ownerData{}} }

func (m *Memory) owner(id string) *ownerData {
	d, ok := m.owners[id]
	if !ok {
		d = &ownerData{}
		m.owners[id] = d
	}
	return d
}

func (m *Memory) ReplaceGenealogy(_ context.Context, ownerID string, persons []model.Person, links []model.FamilyLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.owner(ownerID)
	d.persons = append([]model.Person(nil), persons...)
	d.links = copyLinks(links)
	kept := d.events[:0:0]
	for _, ev := range d.events {
		if ev.Source != model.SourceGedcom {
			kept = append(kept, ev)
		}
	}
	d.events = kept
	return nil
}

func (m *Memory) InsertEvent(_ context.Context, ev model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.owner(ev.OwnerID)
	d.events = append(d.events, ev)
	return nil
}

func (m *Memory) ListEvents(_ context.Context, ownerID string) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[ownerID]
	if !ok {
		return nil, nil
	}
	out := append([]model.Event(nil), d.events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *Memory) LoadGenealogy(_ context.Context, ownerID string) ([]model.Person, []model.FamilyLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[ownerID]
	if !ok {
		return nil, nil, nil
	}
	return append([]model.Person(nil), d.persons...), copyLinks(d.links), nil
}

func (m *Memory) LoadMembers(_ context.Context, ownerID string) ([]model.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[ownerID]
	if !ok {
		return nil, nil
	}
	return append([]model.Member(nil), d.members...), nil
}

func (m *Memory) LoadRelationships(_ context.Context, ownerID string) ([]model.Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[ownerID]
	if !ok {
		return nil, nil
	}
	return append([]model.Relationship(nil), d.relations...), nil
}

// AddMember 同 id 覆盖资料并保留原位置
func (m *Memory) AddMember(_ context.Context, ownerID string, mem model.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.owner(ownerID)
	for i := range d.members {
		if d.members[i].ID == mem.ID {
			d.members[i] = mem
			return nil
		}
	}
	d.members = append(d.members, mem)
	return nil
}

func (m *Memory) AddRelationship(_ context.Context, ownerID string, r model.Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.owner(ownerID)
	d.relations = append(d.relations, r)
	return nil
}

func copyLinks(in []model.FamilyLink) []model.FamilyLink {
	if in == nil {
		return nil
	}
	out := make([]model.FamilyLink, len(in))
	for i, l := range in {
		l.ChildIDs = append([]string(nil), l.ChildIDs...)
		out[i] = l
	}
	return out
}
