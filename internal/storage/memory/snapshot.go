package memory

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/contactbook/internal/models"
)

const snapshotVersion = 1

// ExportSnapshot encodes the store as a protobuf Struct in wire format.
func (s *Store) ExportSnapshot(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	root := map[string]any{
		"version":    snapshotVersion,
		"contacts":   make([]any, 0, len(s.contacts)),
		"categories": make([]any, 0, len(s.categories)),
		"fields":     make([]any, 0, len(s.fields)),
	}
	for _, c := range s.contacts {
		categoryIDs := make([]any, len(c.CategoryIDs))
		for i, id := range c.CategoryIDs {
			categoryIDs[i] = id
		}
		values := make(map[string]any, len(c.Fields))
		for id, v := range c.Fields {
			values[id] = v
		}
		root["contacts"] = append(root["contacts"].([]any), map[string]any{
			"id":           c.ID,
			"name":         c.Name,
			"phone":        c.Phone,
			"email":        c.Email,
			"address":      c.Address,
			"birthday":     c.Birthday,
			"is_active":    c.IsActive,
			"category_ids": categoryIDs,
			"fields":       values,
		})
	}
	for _, c := range s.categories {
		root["categories"] = append(root["categories"].([]any), map[string]any{
			"id":   c.ID,
			"name": c.Name,
		})
	}
	for _, f := range s.fields {
		root["fields"] = append(root["fields"].([]any), map[string]any{
			"id":   f.ID,
			"name": f.Name,
			"type": string(f.Type),
		})
	}
	s.mu.RUnlock()

	st, err := structpb.NewStruct(root)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// ImportSnapshot replaces the store contents with a snapshot produced by
// ExportSnapshot. Links to missing categories or definitions are dropped.
func (s *Store) ImportSnapshot(_ context.Context, data []byte) error {
	if len(data) == 0 {
		return &models.ParseError{Source: "snapshot", Err: fmt.Errorf("empty file")}
	}

	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return &models.ParseError{Source: "snapshot", Err: err}
	}
	root := st.AsMap()
	if v, _ := root["version"].(float64); int(v) != snapshotVersion {
		return &models.ParseError{Source: "snapshot", Value: fmt.Sprint(root["version"]), Err: fmt.Errorf("unsupported version")}
	}

	next := New()
	for _, item := range list(root["categories"]) {
		c := &models.Category{ID: str(item, "id"), Name: str(item, "name")}
		next.categories[c.ID] = c
	}
	for _, item := range list(root["fields"]) {
		f := &models.CustomFieldDefinition{ID: str(item, "id"), Name: str(item, "name"), Type: models.FieldType(str(item, "type"))}
		next.fields[f.ID] = f
	}
	for i, item := range list(root["contacts"]) {
		c := &models.Contact{
			ID:       str(item, "id"),
			Name:     str(item, "name"),
			Phone:    str(item, "phone"),
			Email:    str(item, "email"),
			Address:  str(item, "address"),
			Birthday: str(item, "birthday"),
		}
		c.IsActive, _ = item["is_active"].(bool)
		if c.ID == "" || c.Phone == "" {
			return &models.ParseError{Source: "snapshot", Ref: fmt.Sprintf("contact %d", i+1), Err: fmt.Errorf("missing id or phone")}
		}
		if _, taken := next.phones[c.Phone]; taken {
			return &models.ParseError{Source: "snapshot", Ref: fmt.Sprintf("contact %d", i+1), Value: c.Phone, Err: fmt.Errorf("duplicate phone")}
		}
		for _, raw := range anyList(item["category_ids"]) {
			if id, ok := raw.(string); ok {
				if _, exists := next.categories[id]; exists {
					c.CategoryIDs = append(c.CategoryIDs, id)
				}
			}
		}
		if values, ok := item["fields"].(map[string]any); ok {
			c.Fields = make(map[string]string, len(values))
			for id, raw := range values {
				if _, exists := next.fields[id]; !exists {
					continue
				}
				if v, ok := raw.(string); ok {
					c.Fields[id] = v
				}
			}
		}
		next.contacts[c.ID] = normalized(c)
		next.phones[c.Phone] = c.ID
	}

	s.mu.Lock()
	s.contacts, s.phones, s.categories, s.fields = next.contacts, next.phones, next.categories, next.fields
	s.mu.Unlock()
	return nil
}

func anyList(v any) []any {
	l, _ := v.([]any)
	return l
}

func list(v any) []map[string]any {
	var out []map[string]any
	for _, item := range anyList(v) {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
