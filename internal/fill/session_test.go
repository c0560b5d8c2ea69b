package fill

import (
	"context"
	"errors"
	"testing"

	"beconforms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDef() *model.FormDefinition {
	return &model.FormDefinition{
		ID:    "frm_1",
		Title: "BECon Registration",
		Fields: []model.FormField{
			{ID: "name", Label: "Name", Type: model.FieldText, Required: true, Section: 0, SortOrder: 0},
			{ID: "team", Label: "Team", Type: model.FieldSelect, Options: []string{"A", "B"}, Section: 1, SortOrder: 1},
		},
	}
}

func noopSubmit(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
	return "rsp_1", nil
}

func TestDeriveSections(t *testing.T) {
	fields := []model.FormField{
		{ID: "a", Section: 3},
		{ID: "b", Section: 0},
		{ID: "c", Section: 3},
	}
	assert.Equal(t, []int{0, 3}, DeriveSections(fields))

	// storage order must not matter
	fields = []model.FormField{
		{ID: "c", Section: 3},
		{ID: "a", Section: 0},
		{ID: "b", Section: 3},
	}
	assert.Equal(t, []int{0, 3}, DeriveSections(fields))
}

func TestDeriveSectionsImplicitSingle(t *testing.T) {
	// no field declares a section: still exactly one page, never zero
	assert.Equal(t, []int{0}, DeriveSections(nil))

	fields := []model.FormField{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, []int{0}, DeriveSections(fields))
}

func TestSectionFieldsSortedByOrder(t *testing.T) {
	fields := []model.FormField{
		{ID: "b", Section: 0, SortOrder: 2},
		{ID: "a", Section: 0, SortOrder: 1},
		{ID: "x", Section: 1, SortOrder: 0},
	}
	got := SectionFields(fields, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestLoadInitialisesAnswers(t *testing.T) {
	s := NewSession("", noopSubmit)
	def := testDef()
	def.Fields = append(def.Fields, model.FormField{
		ID: "topics", Label: "Topics", Type: model.FieldCheckbox, Options: []string{"Go", "Rust"}, Section: 1,
	})
	require.NoError(t, s.Load(def))

	assert.Equal(t, StatusReady, s.Status())
	assert.Equal(t, "", s.Answer("name"))
	assert.Equal(t, []string{}, s.Answer("topics"))
}

func TestFailTerminatesLoading(t *testing.T) {
	s := NewSession("", noopSubmit)
	s.Fail(model.ErrNotFound)
	assert.Equal(t, StatusError, s.Status())
	assert.ErrorIs(t, s.Err(), model.ErrNotFound)
}

func TestRequiredGateIsExact(t *testing.T) {
	def := &model.FormDefinition{
		ID: "frm_2",
		Fields: []model.FormField{
			{ID: "x", Label: "X", Type: model.FieldText, Required: true, Section: 0},
			{ID: "y", Label: "Y", Type: model.FieldText, Section: 0},
			{ID: "z", Label: "Z", Type: model.FieldText, Section: 1},
		},
	}
	s := NewSession("", noopSubmit)
	require.NoError(t, s.Load(def))

	err := s.Next()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x", verr.FieldID)
	page, _ := s.Page()
	assert.Equal(t, 0, page)

	// the optional field never blocks
	require.NoError(t, s.SetAnswer("x", "anything"))
	require.NoError(t, s.Next())
	page, _ = s.Page()
	assert.Equal(t, 1, page)
}

func TestAnswersSurviveNavigation(t *testing.T) {
	s := NewSession("", noopSubmit)
	require.NoError(t, s.Load(testDef()))

	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())
	require.NoError(t, s.SetAnswer("team", "A"))
	require.NoError(t, s.Previous())

	assert.Equal(t, "Ada", s.Answer("name"))
	require.NoError(t, s.Next())
	assert.Equal(t, "A", s.Answer("team"))
}

func TestCheckboxToggle(t *testing.T) {
	def := &model.FormDefinition{
		ID: "frm_3",
		Fields: []model.FormField{
			{ID: "c", Label: "C", Type: model.FieldCheckbox, Options: []string{"A", "B"}},
		},
	}
	s := NewSession("", noopSubmit)
	require.NoError(t, s.Load(def))

	require.NoError(t, s.Toggle("c", "A"))
	assert.Equal(t, []string{"A"}, s.Answer("c"))

	require.NoError(t, s.Toggle("c", "A"))
	assert.Equal(t, []string{}, s.Answer("c"))

	require.NoError(t, s.Toggle("c", "A"))
	require.NoError(t, s.Toggle("c", "B"))
	assert.Equal(t, []string{"A", "B"}, s.Answer("c"))

	// selection order, not option order
	require.NoError(t, s.Toggle("c", "A"))
	require.NoError(t, s.Toggle("c", "A"))
	assert.Equal(t, []string{"B", "A"}, s.Answer("c"))
}

func TestSubmitSendsWholeMapOnce(t *testing.T) {
	var sent map[string]interface{}
	submit := func(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
		sent = data
		return "rsp_42", nil
	}

	s := NewSession("", submit)
	require.NoError(t, s.Load(testDef()))

	_, total := s.Page()
	assert.Equal(t, 2, total)

	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())
	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, StatusSubmitted, s.Status())
	assert.Equal(t, "rsp_42", s.ResponseID())
	assert.Equal(t, map[string]interface{}{"name": "Ada", "team": ""}, sent)
}

func TestSubmitRequiresAuthLocally(t *testing.T) {
	calls := 0
	submit := func(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
		calls++
		return "", nil
	}

	def := testDef()
	def.RequireAuth = true
	s := NewSession("", submit)
	require.NoError(t, s.Load(def))
	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, model.ErrAuthRequired)
	assert.Equal(t, 0, calls, "must fail before any network call")
	assert.Equal(t, StatusReady, s.Status())
}

func TestSubmitFailureKeepsAnswers(t *testing.T) {
	fail := true
	submit := func(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
		if fail {
			return "", errors.New("network down")
		}
		return "rsp_1", nil
	}

	s := NewSession("", submit)
	require.NoError(t, s.Load(testDef()))
	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())

	require.Error(t, s.Submit(context.Background()))
	assert.Equal(t, StatusReady, s.Status())
	page, _ := s.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, "Ada", s.Answer("name"))

	fail = false
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, StatusSubmitted, s.Status())
}

func TestAlreadyRegisteredIsTerminalSuccess(t *testing.T) {
	submit := func(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
		return "", model.ErrAlreadyRegistered
	}

	s := NewSession("usr_1", submit)
	require.NoError(t, s.Load(testDef()))
	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())

	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, StatusSubmitted, s.Status())
}

func TestEndToEndScenario(t *testing.T) {
	var sent map[string]interface{}
	submit := func(ctx context.Context, data map[string]interface{}, identity string) (string, error) {
		sent = data
		return "rsp_1", nil
	}

	s := NewSession("", submit)
	require.NoError(t, s.Load(testDef()))

	_, total := s.Page()
	require.Equal(t, 2, total)

	err := s.Next()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name", verr.Label)

	require.NoError(t, s.SetAnswer("name", "Ada"))
	require.NoError(t, s.Next())
	page, _ := s.Page()
	require.Equal(t, 1, page)

	// team is optional: empty is fine
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, map[string]interface{}{"name": "Ada", "team": ""}, sent)
}
