package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
)

type submitCall struct {
	body map[string]any
	key  models.Key
}

type fakeTarget struct {
	desc    *catalog.Descriptor
	records []models.Record
	err     error
	calls   []submitCall
	during  func()
}

func (f *fakeTarget) Descriptor() *catalog.Descriptor { return f.desc }

func (f *fakeTarget) Find(key models.Key) (models.Record, bool) {
	for _, r := range f.records {
		if models.KeyOf(f.desc, r).Equal(key) {
			return r, true
		}
	}
	return nil, false
}

func (f *fakeTarget) Submit(ctx context.Context, body map[string]any, key models.Key) error {
	f.calls = append(f.calls, submitCall{body: body, key: key})
	if f.during != nil {
		f.during()
	}
	return f.err
}

func newTarget(t *testing.T, resource string, records ...models.Record) *fakeTarget {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	d, err := c.Get(resource)
	require.NoError(t, err)
	return &fakeTarget{desc: d, records: records}
}

func TestAdd_ComposeAndSubmit(t *testing.T) {
	tg := newTarget(t, "cars")
	s := New(tg)

	require.NoError(t, s.Add())
	require.NoError(t, s.SetField("model", "Tara"))
	require.NoError(t, s.SetField("color", "blue"))

	require.NoError(t, s.Submit(context.Background()))

	require.Len(t, tg.calls, 1)
	assert.Nil(t, tg.calls[0].key)
	assert.Equal(t, map[string]any{"model": "Tara", "color": "blue", "engineType": "", "productYear": nil}, tg.calls[0].body)

	snap := s.Snapshot()
	assert.Equal(t, Idle, snap.Mode)
	assert.Empty(t, snap.Draft)
	assert.NoError(t, snap.Err)
}

func TestAdd_NotAllowed(t *testing.T) {
	s := New(newTarget(t, "participates"))
	assert.ErrorIs(t, s.Add(), ErrNotAllowed)
	assert.Equal(t, Idle, s.Snapshot().Mode)
}

func TestEdit_PrefillsAndLocksKeys(t *testing.T) {
	tg := newTarget(t, "loans", models.Record{
		"planId": int64(3), "loansId": int64(7), "price": 1500.0,
		"dueDate": "2024-06-30T00:00:00.000Z", "paymentPenalty": 2.5, "carPrice": 9000.0,
	})
	s := New(tg)

	require.NoError(t, s.Edit(models.Key{"3", "7"}))
	snap := s.Snapshot()
	assert.Equal(t, Editing, snap.Mode)
	assert.Equal(t, models.Key{"3", "7"}, snap.Key)
	assert.Equal(t, "2024-06-30", snap.Draft["dueDate"])
	assert.Equal(t, "1500", snap.Draft["price"])

	assert.ErrorIs(t, s.SetField("planId", "4"), ErrReadOnlyField)
	assert.ErrorIs(t, s.SetField("carPrice", "1"), ErrUnknownField)
	require.NoError(t, s.SetField("price", "1600"))

	require.NoError(t, s.Submit(context.Background()))
	require.Len(t, tg.calls, 1)
	assert.Equal(t, models.Key{"3", "7"}, tg.calls[0].key)
	assert.Equal(t, map[string]any{"price": 1600.0, "dueDate": "2024-06-30", "paymentPenalty": 2.5}, tg.calls[0].body)
}

func TestEdit_DiscardsPreviousDraft(t *testing.T) {
	tg := newTarget(t, "agencies",
		models.Record{"id": int64(1), "city": "Tehran", "phoneNumber": "1", "officeAddress": "a"},
		models.Record{"id": int64(2), "city": "Shiraz", "phoneNumber": "2", "officeAddress": "b"},
	)
	s := New(tg)

	require.NoError(t, s.Edit(models.Key{"1"}))
	require.NoError(t, s.SetField("city", "changed"))
	require.NoError(t, s.Edit(models.Key{"2"}))

	snap := s.Snapshot()
	assert.Equal(t, models.Key{"2"}, snap.Key)
	assert.Equal(t, "Shiraz", snap.Draft["city"])

	require.NoError(t, s.Add())
	snap = s.Snapshot()
	assert.Equal(t, Composing, snap.Mode)
	assert.Nil(t, snap.Key)
	assert.Equal(t, "", snap.Draft["city"])
}

func TestEdit_NotAllowedAndMissing(t *testing.T) {
	assert.ErrorIs(t, New(newTarget(t, "sellingplans")).Edit(models.Key{"1"}), ErrNotAllowed)
	assert.ErrorIs(t, New(newTarget(t, "cars")).Edit(models.Key{"1"}), ErrRecordNotFound)
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	tg := newTarget(t, "cars")
	tg.err = errors.New("server error 500: boom")
	s := New(tg)

	require.NoError(t, s.Add())
	require.NoError(t, s.SetField("model", "Tara"))

	err := s.Submit(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, Composing, snap.Mode)
	assert.Equal(t, "Tara", snap.Draft["model"])
	assert.Equal(t, err, s.LastError())

	tg.err = nil
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, Idle, s.Snapshot().Mode)
	assert.NoError(t, s.LastError())
}

func TestSetField_ClearsSubmitError(t *testing.T) {
	tg := newTarget(t, "cars")
	tg.err = errors.New("server error 404: Not Found")
	s := New(tg)

	require.NoError(t, s.Add())
	require.Error(t, s.Submit(context.Background()))
	require.Error(t, s.LastError())

	require.NoError(t, s.SetField("model", "Saina"))
	assert.NoError(t, s.LastError())
	assert.Equal(t, Composing, s.Snapshot().Mode)
}

func TestSubmit_ValidationErrorIsLocal(t *testing.T) {
	tg := newTarget(t, "cars")
	s := New(tg)

	require.NoError(t, s.Add())
	require.NoError(t, s.SetField("productYear", "soon"))

	err := s.Submit(context.Background())
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "productYear", ve.Field)
	assert.Empty(t, tg.calls)
	assert.Equal(t, Composing, s.Snapshot().Mode)
}

func TestSubmit_Idle(t *testing.T) {
	s := New(newTarget(t, "cars"))
	assert.ErrorIs(t, s.Submit(context.Background()), ErrNoDraft)
	assert.ErrorIs(t, s.SetField("model", "x"), ErrNoDraft)
}

func TestSubmit_SessionMovedOnMeanwhile(t *testing.T) {
	tg := newTarget(t, "cars", models.Record{"id": int64(1), "model": "Pride"})
	s := New(tg)
	tg.during = func() { require.NoError(t, s.Edit(models.Key{"1"})) }

	require.NoError(t, s.Add())
	require.NoError(t, s.Submit(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, Editing, snap.Mode, "the newer edit survives")
	assert.Equal(t, "Pride", snap.Draft["model"])
}

func TestCancel(t *testing.T) {
	s := New(newTarget(t, "cars"))
	require.NoError(t, s.Add())
	s.Cancel()
	assert.Equal(t, Idle, s.Snapshot().Mode)
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "editing", Editing.String())
}

func TestSetField_ComposingRejectsNonInput(t *testing.T) {
	s := New(newTarget(t, "cars"))
	require.NoError(t, s.Add())
	assert.ErrorIs(t, s.SetField("id", "5"), ErrReadOnlyField)

	spot := New(newTarget(t, "spotsales"))
	require.NoError(t, spot.Add())
	assert.NoError(t, spot.SetField("planId", "5"))
}
