package book

import (
	"sort"
	"strings"

	"main/internal/schema"
)

// Manager routes ticks to per-instrument books, created lazily. The
// registry is owned by the manager instance, never shared.
type Manager struct {
	books map[schema.SymbolID]*Book
	opts  []Option
}

// NewManager creates an empty manager. Options apply to every book it
// creates.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		books: make(map[schema.SymbolID]*Book),
		opts:  opts,
	}
}

// ProcessTick routes one tick to the instrument's book.
func (m *Manager) ProcessTick(t schema.Tick) {
	m.GetOrCreate(t.SymbolID).ProcessTick(t)
}

// GetOrCreate returns the book for an instrument, creating it if needed.
func (m *Manager) GetOrCreate(symbolID schema.SymbolID) *Book {
	if b, ok := m.books[symbolID]; ok {
		return b
	}
	b := New(symbolID, m.opts...)
	m.books[symbolID] = b
	return b
}

// Book returns the book for an instrument, if it exists.
func (m *Manager) Book(symbolID schema.SymbolID) (*Book, bool) {
	b, ok := m.books[symbolID]
	return b, ok
}

// BookCount returns the number of tracked instruments.
func (m *Manager) BookCount() int { return len(m.books) }

// SymbolIDs returns tracked instruments in ascending order.
func (m *Manager) SymbolIDs() []schema.SymbolID {
	ids := make([]schema.SymbolID, 0, len(m.books))
	for id := range m.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Report renders a consolidated report across all books.
func (m *Manager) Report() string {
	var sb strings.Builder
	sb.WriteString("Order Book Manager Report\n")
	for _, id := range m.SymbolIDs() {
		sb.WriteString(m.books[id].Report())
	}
	return sb.String()
}
