package editor

import (
	"context"
	"errors"
	"testing"

	"beconforms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore keeps the authoritative order server-side so tests can cover the
// refetch path.
type mockStore struct {
	form        *model.FormDefinition
	reorderErr  error
	addErr      error
	deleteErr   error
	reorderedTo []string
}

func (m *mockStore) GetAdminForm(ctx context.Context, id string) (*model.FormDefinition, error) {
	cp := *m.form
	cp.Fields = append([]model.FormField{}, m.form.Fields...)
	return &cp, nil
}

func (m *mockStore) AddField(ctx context.Context, formID string, spec model.FormField) (*model.FormField, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	spec.ID = "fld_new"
	spec.SortOrder = len(m.form.Fields)
	m.form.Fields = append(m.form.Fields, spec)
	return &spec, nil
}

func (m *mockStore) UpdateField(ctx context.Context, formID, fieldID string, spec model.FormField) (*model.FormField, error) {
	for i := range m.form.Fields {
		if m.form.Fields[i].ID == fieldID {
			spec.ID = fieldID
			spec.SortOrder = m.form.Fields[i].SortOrder
			m.form.Fields[i] = spec
			return &spec, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockStore) DeleteField(ctx context.Context, formID, fieldID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.form.Fields {
		if m.form.Fields[i].ID == fieldID {
			m.form.Fields = append(m.form.Fields[:i], m.form.Fields[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *mockStore) ReorderFields(ctx context.Context, formID string, orderedIDs []string) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	current := make([]string, len(m.form.Fields))
	for i, f := range m.form.Fields {
		current[i] = f.ID
	}
	if err := VerifyComplete(current, orderedIDs); err != nil {
		return err
	}
	pos := make(map[string]int)
	for i, id := range orderedIDs {
		pos[id] = i
	}
	for i := range m.form.Fields {
		m.form.Fields[i].SortOrder = pos[m.form.Fields[i].ID]
	}
	m.reorderedTo = orderedIDs
	return nil
}

func fourFields() *model.FormDefinition {
	return &model.FormDefinition{
		ID: "frm_1",
		Fields: []model.FormField{
			{ID: "f1", Label: "One", SortOrder: 0},
			{ID: "f2", Label: "Two", SortOrder: 1},
			{ID: "f3", Label: "Three", SortOrder: 2},
			{ID: "f4", Label: "Four", SortOrder: 3},
		},
	}
}

func TestReordered(t *testing.T) {
	ids := []string{"f1", "f2", "f3", "f4"}

	got, err := Reordered(ids, "f3", "f1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "f1", "f2", "f4"}, got)

	got, err = Reordered(ids, "f1", "f4", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"f2", "f3", "f4", "f1"}, got)

	got, err = Reordered(ids, "f2", "f2", false)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	_, err = Reordered(ids, "nope", "f1", false)
	assert.Error(t, err)
}

func TestReorderRoundTrip(t *testing.T) {
	store := &mockStore{form: fourFields()}
	e, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)

	require.NoError(t, e.Reorder(context.Background(), "f3", "f1", false))
	assert.Equal(t, []string{"f3", "f1", "f2", "f4"}, store.reorderedTo)

	// refetch must agree with the optimistic order
	fresh, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)
	var ids []string
	for _, f := range fresh.Fields() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"f3", "f1", "f2", "f4"}, ids)
	assert.Equal(t, fieldIDs(e.Fields()), ids)

	// dense 0..N-1 order after reorder
	for i, f := range fresh.Fields() {
		assert.Equal(t, i, f.SortOrder)
	}
}

func TestReorderFailureRefetchesAuthoritative(t *testing.T) {
	store := &mockStore{form: fourFields(), reorderErr: errors.New("boom")}
	e, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)

	err = e.Reorder(context.Background(), "f3", "f1", false)
	require.Error(t, err)

	// no partial corruption: the local list equals the pre-reorder order
	assert.Equal(t, []string{"f1", "f2", "f3", "f4"}, fieldIDs(e.Fields()))
}

func TestVerifyComplete(t *testing.T) {
	current := []string{"f1", "f2", "f3"}

	assert.NoError(t, VerifyComplete(current, []string{"f3", "f1", "f2"}))
	assert.ErrorIs(t, VerifyComplete(current, []string{"f1", "f2"}), model.ErrIncompleteReorder)
	assert.ErrorIs(t, VerifyComplete(current, []string{"f1", "f2", "f2"}), model.ErrIncompleteReorder)
	assert.ErrorIs(t, VerifyComplete(current, []string{"f1", "f2", "f9"}), model.ErrIncompleteReorder)
}

func TestAddFieldPatchesOnSuccessOnly(t *testing.T) {
	store := &mockStore{form: fourFields(), addErr: errors.New("boom")}
	e, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)

	_, err = e.AddField(context.Background(), model.FormField{Label: "Five", Type: model.FieldText})
	require.Error(t, err)
	assert.Len(t, e.Fields(), 4)

	store.addErr = nil
	created, err := e.AddField(context.Background(), model.FormField{Label: "Five", Type: model.FieldText})
	require.NoError(t, err)
	assert.Equal(t, "fld_new", created.ID)
	assert.Equal(t, 4, created.SortOrder)
	assert.Len(t, e.Fields(), 5)
}

func TestUpdateFieldSectionLeavesOrderAlone(t *testing.T) {
	store := &mockStore{form: fourFields()}
	e, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)

	spec := e.Fields()[1]
	spec.Section = 2
	updated, err := e.UpdateField(context.Background(), "f2", spec)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Section)
	assert.Equal(t, 1, updated.SortOrder)
}

func TestDeleteFieldRemovesLocally(t *testing.T) {
	store := &mockStore{form: fourFields()}
	e, err := Open(context.Background(), store, "frm_1")
	require.NoError(t, err)

	require.NoError(t, e.DeleteField(context.Background(), "f2"))
	assert.Equal(t, []string{"f1", "f3", "f4"}, fieldIDs(e.Fields()))

	store.deleteErr = errors.New("boom")
	require.Error(t, e.DeleteField(context.Background(), "f1"))
	assert.Len(t, e.Fields(), 3)
}
