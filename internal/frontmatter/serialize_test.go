package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{
		"uid":    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"title":  "Trimmed",
		"source": "src/trimmed.cpp",
		"weight": 3,
	}

	out1, err := SerializeYAML(fields)
	require.NoError(t, err)
	out2, err := SerializeYAML(fields)
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "source: src/trimmed.cpp\ntitle: Trimmed\nuid: 7c9e6679-7425-40de-944b-e07fc1f90ae7\nweight: 3\n", string(out1))
}

func TestSerializeYAML_NestedMapAndList(t *testing.T) {
	fields := map[string]any{
		"outer": map[string]any{"b": 2, "a": true},
		"tags":  []string{"icp", "trimming"},
	}

	out, err := SerializeYAML(fields)
	require.NoError(t, err)
	require.Equal(t, "outer:\n  a: true\n  b: 2\ntags:\n  - icp\n  - trimming\n", string(out))
}

func TestSerializeYAML_QuotesAmbiguousStrings(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"title": "true"})
	require.NoError(t, err)
	require.Equal(t, "title: \"true\"\n", string(out))

	parsed, err := ParseYAML(out)
	require.NoError(t, err)
	require.Equal(t, "true", parsed["title"])
}

func TestSerializeYAML_RejectsUnsupportedTypes(t *testing.T) {
	_, err := SerializeYAML(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
