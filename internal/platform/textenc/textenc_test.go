// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package textenc_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/platform/textenc"
)

func writeSample(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

/*
TestDetect_UTF8 verifies plain and BOM-prefixed UTF-8 samples are recognized.
*/
func TestDetect_UTF8(t *testing.T) {
	plain := writeSample(t, "plain.csv", []byte("Nom du jeu;Éditeur\nLes Aventuriers du Rail;Days of Wonder\n"))
	assert.Equal(t, textenc.UTF8, textenc.Detect(plain))

	bom := writeSample(t, "bom.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nom du jeu\n")...))
	assert.Equal(t, textenc.UTF8, textenc.Detect(bom))
}

/*
TestDetect_CP1252 verifies that Windows punctuation bytes (0x80-0x9F) push
detection towards cp1252.
*/
func TestDetect_CP1252(t *testing.T) {
	// 0x92 is a right single quote in cp1252, invalid as UTF-8.
	sample := writeSample(t, "win.csv", []byte("Nom du jeu\nL\x92Aventure\n"))
	assert.Equal(t, textenc.CP1252, textenc.Detect(sample))
}

/*
TestDetect_Latin1 verifies high bytes outside the Windows punctuation range
fall back to latin-1.
*/
func TestDetect_Latin1(t *testing.T) {
	// 0xE9 is 'é' in latin-1, invalid as a standalone UTF-8 byte.
	sample := writeSample(t, "latin.csv", []byte("Nom du jeu\nD\xE9tective\n"))
	assert.Equal(t, textenc.Latin1, textenc.Detect(sample))
}

/*
TestDetect_MissingFile verifies an unreadable path degrades to UTF-8 so the
caller's fallback chain takes over instead of an error propagating.
*/
func TestDetect_MissingFile(t *testing.T) {
	assert.Equal(t, textenc.UTF8, textenc.Detect(filepath.Join(t.TempDir(), "nope.csv")))
}

/*
TestDecodeReader_RoundTrip verifies each supported encoding decodes to the
expected UTF-8 text, accents intact.
*/
func TestDecodeReader_RoundTrip(t *testing.T) {
	cases := []struct {
		encoding string
		raw      []byte
		want     string
	}{
		{textenc.CP1252, []byte("D\xE9tective \x92"), "Détective ’"},
		{textenc.Latin1, []byte("\xC9checs"), "Échecs"},
		{textenc.ISO8859_1, []byte("Caf\xE9"), "Café"},
		{textenc.UTF8, []byte("Café"), "Café"},
	}

	for _, tc := range cases {
		decoded, err := io.ReadAll(textenc.DecodeReader(bytes.NewReader(tc.raw), tc.encoding))
		require.NoError(t, err, tc.encoding)
		assert.Equal(t, tc.want, string(decoded), tc.encoding)
	}
}
