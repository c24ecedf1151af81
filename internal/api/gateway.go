package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

// Gateway exposes typed operations per entity collection over the
// Transport. Status codes are surfaced to callers: the executor and the
// cleanup engine make their own decisions from them.
type Gateway struct {
	transport *Transport
	log       zerolog.Logger
}

// NewGateway creates a Gateway over the given transport
func NewGateway(transport *Transport, logger zerolog.Logger) *Gateway {
	return &Gateway{
		transport: transport,
		log:       logger.With().Str("component", "gateway").Logger(),
	}
}

// endpointFor returns the collection path for an entity type
func endpointFor(t types.EntityType) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownEntityType, t)
	}
	return "/api/v1/" + string(t), nil
}

// List fetches all entities of a type. A 204 means an empty collection,
// not an error; any other non-200 status returns an empty list and the
// status for diagnostics.
func (g *Gateway) List(ctx context.Context, entityType types.EntityType) (int, []map[string]any, error) {
	endpoint, err := endpointFor(entityType)
	if err != nil {
		return 0, nil, err
	}

	status, body, err := g.transport.Send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}

	switch status {
	case http.StatusOK:
		var items []map[string]any
		if err := json.Unmarshal(body, &items); err != nil {
			return status, nil, fmt.Errorf("failed to decode %s list: %w", entityType, err)
		}
		return status, items, nil
	case http.StatusNoContent:
		return status, nil, nil
	default:
		g.log.Debug().Int("status", status).Str("entity_type", string(entityType)).Msg("list returned unexpected status")
		return status, nil, nil
	}
}

// Get fetches a single entity by server ID
func (g *Gateway) Get(ctx context.Context, entityType types.EntityType, id string) (int, map[string]any, error) {
	endpoint, err := endpointFor(entityType)
	if err != nil {
		return 0, nil, err
	}

	status, body, err := g.transport.Send(ctx, http.MethodGet, endpoint+"/"+id, nil)
	if err != nil {
		return 0, nil, err
	}
	if status != http.StatusOK {
		return status, nil, nil
	}

	var item map[string]any
	if err := json.Unmarshal(body, &item); err != nil {
		return status, nil, fmt.Errorf("failed to decode %s %s: %w", entityType, id, err)
	}
	return status, item, nil
}

// Create submits a new entity. Success is exactly 201; any other status
// yields no created record plus an error message extracted from the
// response body.
func (g *Gateway) Create(ctx context.Context, entityType types.EntityType, payload map[string]any) (int, map[string]any, string, error) {
	endpoint, err := endpointFor(entityType)
	if err != nil {
		return 0, nil, "", err
	}

	status, body, err := g.transport.Send(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return 0, nil, "", err
	}

	if status != http.StatusCreated {
		return status, nil, errorMessage(body), nil
	}

	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		return status, nil, "", fmt.Errorf("failed to decode created %s: %w", entityType, err)
	}
	return status, created, "", nil
}

// Delete removes an entity by server ID. Success is 200 or 204.
func (g *Gateway) Delete(ctx context.Context, entityType types.EntityType, id string) (int, string, error) {
	endpoint, err := endpointFor(entityType)
	if err != nil {
		return 0, "", err
	}

	status, body, err := g.transport.Send(ctx, http.MethodDelete, endpoint+"/"+id, nil)
	if err != nil {
		return 0, "", err
	}
	if status == http.StatusOK || status == http.StatusNoContent {
		return status, "", nil
	}
	return status, errorMessage(body), nil
}

// Verify re-fetches an entity and compares the expected fields for
// equality. It is a post-create correctness check: a create that succeeded
// but fails verification is still a create.
func (g *Gateway) Verify(ctx context.Context, entityType types.EntityType, id string, expected map[string]any) (bool, string, map[string]any, error) {
	status, actual, err := g.Get(ctx, entityType, id)
	if err != nil {
		return false, "", nil, err
	}
	if status != http.StatusOK || actual == nil {
		return false, fmt.Sprintf("entity not found (status: %d)", status), nil, nil
	}

	var mismatches []string
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesMatch(want, got) {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected '%v', got '%v'", key, want, got))
		}
	}

	if len(mismatches) > 0 {
		return false, "field mismatches: " + strings.Join(mismatches, "; "), actual, nil
	}
	return true, "verification passed", actual, nil
}

// apiErrorBody is the structured error shape the platform returns
type apiErrorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// errorMessage extracts a human-readable message from an error response,
// falling back to the raw body.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Title != "" {
			return parsed.Title
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return trimmed
}

// valuesMatch compares an expected field against the decoded JSON value,
// tolerating the numeric widening json.Unmarshal performs.
func valuesMatch(expected, actual any) bool {
	if expected == actual {
		return true
	}
	ef, eok := asFloat(expected)
	af, aok := asFloat(actual)
	if eok && aok {
		return ef == af
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
