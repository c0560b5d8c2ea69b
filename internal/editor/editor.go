package editor

import (
	"context"
	"fmt"
	"sort"

	"beconforms/internal/model"
)

// Store is the authoritative form store the editor edits against.
type Store interface {
	GetAdminForm(ctx context.Context, id string) (*model.FormDefinition, error)
	AddField(ctx context.Context, formID string, spec model.FormField) (*model.FormField, error)
	UpdateField(ctx context.Context, formID, fieldID string, spec model.FormField) (*model.FormField, error)
	DeleteField(ctx context.Context, formID, fieldID string) error
	ReorderFields(ctx context.Context, formID string, orderedIDs []string) error
}

// Editor keeps a local projection of one form for an admin session. Reorder
// applies optimistically and falls back to a full refetch when the store
// rejects the new order; there is no partial local repair.
type Editor struct {
	store Store
	form  *model.FormDefinition
}

// Open fetches the definition and wraps it for editing.
func Open(ctx context.Context, store Store, formID string) (*Editor, error) {
	form, err := store.GetAdminForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}
	return &Editor{store: store, form: form}, nil
}

// Form returns the current local projection.
func (e *Editor) Form() *model.FormDefinition { return e.form }

// Fields returns the local field list in ascending sort order.
func (e *Editor) Fields() []model.FormField {
	fields := append([]model.FormField{}, e.form.Fields...)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].SortOrder < fields[j].SortOrder
	})
	return fields
}

// Reorder moves draggedID next to targetID (after it when after is true) and
// persists the complete new id list. The local list is updated before the
// store call resolves; on failure the authoritative definition is refetched
// and the optimistic state discarded.
func (e *Editor) Reorder(ctx context.Context, draggedID, targetID string, after bool) error {
	ids := fieldIDs(e.Fields())
	reordered, err := Reordered(ids, draggedID, targetID, after)
	if err != nil {
		return err
	}

	prev := append([]model.FormField{}, e.form.Fields...)
	e.applyOrder(reordered)

	if err := e.store.ReorderFields(ctx, e.form.ID, reordered); err != nil {
		e.form.Fields = prev
		if form, ferr := e.store.GetAdminForm(ctx, e.form.ID); ferr == nil {
			e.form = form
		}
		return fmt.Errorf("reorder rejected: %w", err)
	}
	return nil
}

// AddField persists a new field and patches the local list with the returned
// server-assigned field. Nothing changes locally on failure.
func (e *Editor) AddField(ctx context.Context, spec model.FormField) (*model.FormField, error) {
	created, err := e.store.AddField(ctx, e.form.ID, spec)
	if err != nil {
		return nil, err
	}
	e.form.Fields = append(e.form.Fields, *created)
	return created, nil
}

// UpdateField persists an edit and patches the local entry on success.
// Section assignment goes through here like any other attribute and never
// touches sort order.
func (e *Editor) UpdateField(ctx context.Context, fieldID string, spec model.FormField) (*model.FormField, error) {
	updated, err := e.store.UpdateField(ctx, e.form.ID, fieldID, spec)
	if err != nil {
		return nil, err
	}
	for i := range e.form.Fields {
		if e.form.Fields[i].ID == fieldID {
			e.form.Fields[i] = *updated
			break
		}
	}
	return updated, nil
}

// DeleteField persists the delete and drops the local entry on success.
func (e *Editor) DeleteField(ctx context.Context, fieldID string) error {
	if err := e.store.DeleteField(ctx, e.form.ID, fieldID); err != nil {
		return err
	}
	for i := range e.form.Fields {
		if e.form.Fields[i].ID == fieldID {
			e.form.Fields = append(e.form.Fields[:i], e.form.Fields[i+1:]...)
			break
		}
	}
	return nil
}

func (e *Editor) applyOrder(orderedIDs []string) {
	pos := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		pos[id] = i
	}
	for i := range e.form.Fields {
		e.form.Fields[i].SortOrder = pos[e.form.Fields[i].ID]
	}
}

// Reordered removes draggedID from ids and reinserts it immediately before
// or after targetID, yielding the complete new order.
func Reordered(ids []string, draggedID, targetID string, after bool) ([]string, error) {
	if draggedID == targetID {
		return append([]string{}, ids...), nil
	}

	out := make([]string, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == draggedID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		return nil, fmt.Errorf("dragged field %q not in list", draggedID)
	}

	target := -1
	for i, id := range out {
		if id == targetID {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("target field %q not in list", targetID)
	}
	if after {
		target++
	}

	out = append(out, "")
	copy(out[target+1:], out[target:])
	out[target] = draggedID
	return out, nil
}

// VerifyComplete checks that proposed contains exactly the current id set,
// each id once. The store runs this before reassigning order.
func VerifyComplete(current, proposed []string) error {
	if len(current) != len(proposed) {
		return model.ErrIncompleteReorder
	}
	seen := make(map[string]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	used := make(map[string]bool, len(proposed))
	for _, id := range proposed {
		if !seen[id] || used[id] {
			return model.ErrIncompleteReorder
		}
		used[id] = true
	}
	return nil
}

func fieldIDs(fields []model.FormField) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}
	return ids
}
