// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package textenc detects and decodes the text encodings found in the scraped
game CSV files.

The per-bar CSVs were produced by different scraping runs on different
machines, so some are UTF-8, some cp1252, some latin-1. Parsing always goes
through two stages:

 1. [Detect] makes a best guess from the first 10 KB of the file.
 2. If parsing with the guess fails, callers walk [FallbackChain] until one
    encoding yields a parseable file, and skip the file if none does.

This availability-first policy mirrors how the data has always been handled:
a half-readable catalogue beats a crash at startup.
*/
package textenc

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Supported encoding names. These are the only values [Detect] returns and
// the only values [DecodeReader] accepts.
const (
	UTF8      = "utf-8"
	Latin1    = "latin-1"
	CP1252    = "cp1252"
	ISO8859_1 = "iso-8859-1"
)

// FallbackChain is the fixed sequence of encodings tried when parsing with
// the detected encoding fails.
var FallbackChain = []string{UTF8, Latin1, CP1252, ISO8859_1}

// detectSampleSize bounds how much of a file is read for detection.
const detectSampleSize = 10 * 1024

// Detect samples the beginning of the file and returns a best-guess encoding
// name.
//
// # Heuristic
//
//  1. A UTF-8 BOM, or a sample that is entirely valid UTF-8, means UTF-8.
//  2. Bytes in the 0x80–0x9F range are printable characters in cp1252
//     (curly quotes, €, œ) but control codes in latin-1, so their presence
//     votes for cp1252.
//  3. Anything else with high bytes is called latin-1.
//
// Detection never fails: an unreadable file is reported as UTF-8 and the
// caller's fallback chain takes over.
func Detect(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return UTF8
	}
	defer file.Close()

	sample := make([]byte, detectSampleSize)
	n, err := io.ReadFull(file, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return UTF8
	}
	sample = sample[:n]

	if bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}) {
		return UTF8
	}

	if utf8.Valid(sample) {
		return UTF8
	}

	for _, b := range sample {
		if b >= 0x80 && b <= 0x9F {
			return CP1252
		}
	}

	return Latin1
}

// DecodeReader wraps r so that reads yield UTF-8 regardless of the source
// encoding. Unknown encoding names pass the reader through unchanged.
func DecodeReader(r io.Reader, encoding string) io.Reader {
	switch encoding {
	case Latin1, ISO8859_1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case CP1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return r
	}
}
