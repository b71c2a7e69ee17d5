package fingerprint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Run("excludes fingerprint and uid", func(t *testing.T) {
		body := []byte("# Trimmed\n")
		plain, err := Compute(map[string]any{"title": "Trimmed"}, body)
		require.NoError(t, err)

		decorated, err := Compute(map[string]any{
			"title":       "Trimmed",
			"uid":         "123",
			"fingerprint": "should-be-ignored",
		}, body)
		require.NoError(t, err)
		require.Equal(t, plain, decorated)
		require.Equal(t, mdfp.CalculateFingerprintFromParts("title: Trimmed", string(body)), plain)
	})

	t.Run("stable across map insertion order", func(t *testing.T) {
		a := map[string]any{}
		a["title"] = "Trimmed"
		a["source"] = "trimmed.cpp"
		b := map[string]any{}
		b["source"] = "trimmed.cpp"
		b["title"] = "Trimmed"

		fpA, err := Compute(a, []byte("body"))
		require.NoError(t, err)
		fpB, err := Compute(b, []byte("body"))
		require.NoError(t, err)
		require.Equal(t, fpA, fpB)
	})

	t.Run("body changes the fingerprint", func(t *testing.T) {
		fields := map[string]any{"title": "Trimmed"}
		fp1, err := Compute(fields, []byte("one"))
		require.NoError(t, err)
		fp2, err := Compute(fields, []byte("two"))
		require.NoError(t, err)
		require.NotEqual(t, fp1, fp2)
	})

	t.Run("nil fields", func(t *testing.T) {
		_, err := Compute(nil, nil)
		require.Error(t, err)
	})
}

func TestStampAndVerify(t *testing.T) {
	fields := map[string]any{"title": "Trimmed"}
	body := []byte("# Trimmed\n")

	_, _, ok, err := Verify(fields, body)
	require.NoError(t, err)
	require.False(t, ok)

	fp, err := Stamp(fields, body)
	require.NoError(t, err)
	require.Equal(t, fp, fields[Field])

	stored, computed, ok, err := Verify(fields, body)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stored, computed)

	_, _, ok, err = Verify(fields, []byte("# Edited\n"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUID_DeterministicVersion5(t *testing.T) {
	a := UID("src/trimmed.cpp")
	require.Equal(t, a, UID("src/trimmed.cpp"))
	require.NotEqual(t, a, UID("src/point_to_plane.cpp"))

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(5), parsed.Version())
}
