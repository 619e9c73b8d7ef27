package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subject struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := subject{Name: "nginx", Count: 3}
			require.NoError(t, st.Set("sessions/abc/process", in))

			var out subject
			require.NoError(t, st.Get("sessions/abc/process", &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var out subject
			err := st.Get("nope", &out)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSetReplaces(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set("k", subject{Name: "first"}))
			require.NoError(t, st.Set("k", subject{Name: "second"}))

			var out subject
			require.NoError(t, st.Get("k", &out))
			assert.Equal(t, "second", out.Name)
		})
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set("k", subject{Name: "x"}))
			require.NoError(t, st.Delete("k"))

			var out subject
			assert.ErrorIs(t, st.Get("k", &out), ErrNotFound)

			// Second delete is a no-op, not an error.
			assert.NoError(t, st.Delete("k"))
		})
	}
}

func TestKeysWithSeparators(t *testing.T) {
	// Session ids may carry arbitrary characters; the file backend must not
	// treat them as path components.
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := "sessions/../weird id/process"
			require.NoError(t, st.Set(key, subject{Name: "ok"}))

			var out subject
			require.NoError(t, st.Get(key, &out))
			assert.Equal(t, "ok", out.Name)
		})
	}
}
