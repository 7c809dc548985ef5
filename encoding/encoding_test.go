package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeChain(t *testing.T) {
	inputs := map[string]struct {
		in   []byte
		text string
		name string
	}{
		"plain utf-8": {
			in:   []byte(`<ré/>`),
			text: `<ré/>`,
			name: "utf-8",
		},
		"utf-8 with BOM": {
			in:   []byte{0xEF, 0xBB, 0xBF, '<', 'r', '/', '>'},
			text: "<r/>",
			name: "utf-8-sig",
		},
		"latin-1 e-acute": {
			in:   []byte{'<', 'r', ' ', 'a', '=', '"', 0xE9, '"', '/', '>'},
			text: "<r a=\"é\"/>",
			name: "latin-1",
		},
		"empty input": {
			in:   []byte{},
			text: "",
			name: "utf-8",
		},
	}

	for name, expect := range inputs {
		text, enc := Decode(expect.in)
		require.Equal(t, expect.text, text, "decoded text matches for %s", name)
		require.Equal(t, expect.name, enc, "strategy name matches for %s", name)
	}
}

func TestDecodeWith(t *testing.T) {
	// "<r/>" in UTF-16LE
	in := []byte{'<', 0, 'r', 0, '/', 0, '>', 0}
	text, err := DecodeWith(in, "utf-16le")
	require.NoError(t, err, "utf-16le should decode")
	require.Equal(t, "<r/>", text, "decoded text matches")

	text, err = DecodeWith([]byte{0xE9}, "windows-1252")
	require.NoError(t, err, "windows-1252 should decode")
	require.Equal(t, "é", text, "single byte maps to e-acute")

	_, err = DecodeWith([]byte("<r/>"), "ebcdic")
	require.Error(t, err, "unknown encodings are rejected")
	require.Contains(t, err.Error(), "ebcdic", "the error names the encoding")
}

func TestLoadNames(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "latin1", "ISO-8859-1", "cp1252", "koi8r"} {
		require.NotNil(t, Load(name), "Load should know '%s'", name)
	}
	require.Nil(t, Load("shift-jis"), "unknown names yield nil")
}
