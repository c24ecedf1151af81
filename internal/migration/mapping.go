package migration

import (
	"sync"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

// MappingTable tracks natural key → server ID associations built during a
// run. Once a key is mapped it is never remapped: the first write wins. A
// missing entry means "not yet created or creation failed" and is not an
// error by itself. Writes are serialized per table so a future parallel
// executor cannot race two records onto the same key.
type MappingTable struct {
	mu       sync.Mutex
	mappings map[types.EntityType]map[string]string
}

// NewMappingTable creates an empty mapping table
func NewMappingTable() *MappingTable {
	return &MappingTable{
		mappings: make(map[types.EntityType]map[string]string),
	}
}

// Put records a mapping. It returns false when the key was already mapped,
// in which case the existing entry is kept.
func (m *MappingTable) Put(entityType types.EntityType, naturalKey, serverID string) bool {
	if naturalKey == "" || serverID == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.mappings[entityType]
	if !ok {
		table = make(map[string]string)
		m.mappings[entityType] = table
	}
	if _, exists := table[naturalKey]; exists {
		return false
	}
	table[naturalKey] = serverID
	return true
}

// Get looks up the server ID for a natural key
func (m *MappingTable) Get(entityType types.EntityType, naturalKey string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.mappings[entityType]
	if !ok {
		return "", false
	}
	id, ok := table[naturalKey]
	return id, ok
}

// Len returns the number of mappings held for an entity type
func (m *MappingTable) Len(entityType types.EntityType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings[entityType])
}

// Snapshot returns a copy of all mappings for reporting
func (m *MappingTable) Snapshot() map[types.EntityType]map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[types.EntityType]map[string]string, len(m.mappings))
	for entityType, table := range m.mappings {
		copied := make(map[string]string, len(table))
		for k, v := range table {
			copied[k] = v
		}
		out[entityType] = copied
	}
	return out
}
