package annotation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConf_Simple(t *testing.T) {
	e, err := ParseConf(`"tolerance" stopping threshold`)
	require.NoError(t, err)
	assert.Equal(t, "tolerance", e.Key)
	assert.Equal(t, "stopping threshold", e.Description)
}

func TestParseConf_FoldsContinuationLines(t *testing.T) {
	content := NormalizeContent(` "overlap_rate" A ` + "`double`" + ` between ` + "`0.0`" + ` and ` + "`1.0`" + ` for
                 * the overlap rate. The default is ` + "`1.0`" + `. `)
	e, err := ParseConf(content)
	require.NoError(t, err)
	assert.Equal(t, "overlap_rate", e.Key)
	assert.Equal(t, "A `double` between `0.0` and `1.0` for the overlap rate. The default is `1.0`.", e.Description)
}

func TestParseConf_Malformed(t *testing.T) {
	cases := map[string]string{
		"unquoted":       `tolerance stopping threshold`,
		"unterminated":   `"tolerance stopping threshold`,
		"empty key":      `"" stopping threshold`,
		"no description": `"tolerance"`,
		"no separator":   `"tolerance"threshold`,
		"only stars":     "\"tolerance\"\n *\n *",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConf(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedConf))
		})
	}
}

func TestConfEntries_KeepsOrderAndSkipsMalformed(t *testing.T) {
	blocks := []Parsed{
		{Kind: KindConf, Content: `"b" second`, Line: 3},
		{Kind: KindStep, Content: "step"},
		{Kind: KindConf, Content: `broken`, Line: 7},
		{Kind: KindConf, Content: `"a" first`, Line: 12},
	}

	var malformed []int
	entries := ConfEntries(blocks, func(p Parsed, err error) {
		malformed = append(malformed, p.Line)
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, 3, entries[0].Line)
	assert.Equal(t, "a", entries[1].Key)
	assert.Equal(t, []int{7}, malformed)
}
