package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMerges(t *testing.T) {
	p := New()

	errs := p.Update([]byte(`{"theme":"dark","columns":3}`))
	assert.Empty(t, errs)

	errs = p.Update([]byte(`{"theme":"light"}`))
	assert.Empty(t, errs)

	data := p.GetData()
	assert.Equal(t, "light", data["theme"])
	assert.Equal(t, 3.0, data["columns"])
}

func TestUpdateRecordsErrors(t *testing.T) {
	p := New()
	require.Empty(t, p.Update([]byte(`{"a":1}`)))

	errs := p.Update([]byte(`{broken`))
	assert.Len(t, errs, 1)

	// Prior data survives a failed update.
	assert.Equal(t, 1.0, p.GetData()["a"])
}

func TestGetDataNeverNil(t *testing.T) {
	p := &Preferences{}
	assert.NotNil(t, p.GetData())
}
