package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

type fakeSource struct {
	criteria []models.Criterion
	err      error
	calls    int
}

func (f *fakeSource) ListCriteria() ([]models.Criterion, error) {
	f.calls++
	return f.criteria, f.err
}

func TestCatalog_LoadsOnceAndServesLookups(t *testing.T) {
	source := &fakeSource{
		criteria: []models.Criterion{
			{ID: 1, Name: "attendance", Label: "Посещение"},
			{ID: 2, Name: "uniform", Label: "Форма"},
		},
	}
	cat := New(source)

	all, err := cat.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := cat.ByName()
	require.NoError(t, err)
	assert.Equal(t, int64(1), byName["attendance"].ID)

	criterion, ok, err := cat.Lookup("uniform")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Форма", criterion.Label)

	_, ok, err = cat.Lookup("haircut")
	require.NoError(t, err)
	assert.False(t, ok)

	name, ok, err := cat.NameByID(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uniform", name)

	assert.Equal(t, 1, source.calls, "every read should hit the cached snapshot")
}

func TestCatalog_InvalidateReloads(t *testing.T) {
	source := &fakeSource{
		criteria: []models.Criterion{{ID: 1, Name: "attendance", Label: "Посещение"}},
	}
	cat := New(source)

	_, _, err := cat.Lookup("attendance")
	require.NoError(t, err)

	source.criteria = append(source.criteria, models.Criterion{ID: 2, Name: "time", Label: "Вовремя"})
	cat.Invalidate()

	_, ok, err := cat.Lookup("time")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, source.calls)
}

func TestCatalog_SourceErrorPropagates(t *testing.T) {
	sourceErr := errors.New("db down")
	cat := New(&fakeSource{err: sourceErr})

	_, err := cat.All()
	assert.ErrorIs(t, err, sourceErr)
}

func TestCatalog_SnapshotIsACopy(t *testing.T) {
	source := &fakeSource{
		criteria: []models.Criterion{{ID: 1, Name: "attendance", Label: "Посещение"}},
	}
	cat := New(source)

	all, err := cat.All()
	require.NoError(t, err)
	all[0].Name = "mutated"

	criterion, ok, err := cat.Lookup("attendance")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "attendance", criterion.Name)
}
