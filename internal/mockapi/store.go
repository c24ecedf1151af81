package mockapi

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

// Store is the in-memory entity state behind the stand-in API. Each
// collection enforces uniqueness on its natural key the way the real
// platform does, answering duplicates with a conflict.
type Store struct {
	mu          sync.Mutex
	collections map[types.EntityType]map[string]map[string]any
	naturalKeys map[types.EntityType]map[string]bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		collections: make(map[types.EntityType]map[string]map[string]any),
		naturalKeys: make(map[types.EntityType]map[string]bool),
	}
}

// Insert adds an entity, assigning it a server ID. It returns the stored
// entity, or ok=false when the natural key already exists.
func (s *Store) Insert(entityType types.EntityType, payload map[string]any) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKeyOf(entityType, payload)
	if key != "" {
		keys, ok := s.naturalKeys[entityType]
		if !ok {
			keys = make(map[string]bool)
			s.naturalKeys[entityType] = keys
		}
		if keys[key] {
			return nil, false
		}
		keys[key] = true
	}

	id := uuid.New().String()
	stored := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		stored[k] = v
	}
	stored["id"] = id

	collection, ok := s.collections[entityType]
	if !ok {
		collection = make(map[string]map[string]any)
		s.collections[entityType] = collection
	}
	collection[id] = stored

	return stored, true
}

// List returns all entities of a collection
func (s *Store) List(entityType types.EntityType) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := s.collections[entityType]
	items := make([]map[string]any, 0, len(collection))
	for _, item := range collection {
		items = append(items, item)
	}
	return items
}

// Get returns one entity by server ID
func (s *Store) Get(entityType types.EntityType, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections[entityType][id]
	return item, ok
}

// Delete removes one entity by server ID
func (s *Store) Delete(entityType types.EntityType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections[entityType][id]
	if !ok {
		return false
	}
	if key := naturalKeyOf(entityType, item); key != "" {
		delete(s.naturalKeys[entityType], key)
	}
	delete(s.collections[entityType], id)
	return true
}

// naturalKeyOf extracts the uniqueness key for a collection
func naturalKeyOf(entityType types.EntityType, payload map[string]any) string {
	switch entityType {
	case types.EntityTypeSymbolsGroups, types.EntityTypeSymbols, types.EntityTypeTradersGroups:
		if name, ok := payload["name"].(string); ok {
			return name
		}
	case types.EntityTypeTraders:
		return keyString(payload["login"])
	case types.EntityTypeOrders, types.EntityTypePositions, types.EntityTypeDeals:
		return keyString(payload["transactionId"])
	}
	return ""
}

// keyString renders a numeric or string key without float formatting
// artifacts; JSON decoding hands numbers over as float64.
func keyString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%v", v)
}
