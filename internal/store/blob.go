package store

import (
	"bytes"
	"compress/zlib"
	"database/sql"
	"fmt"
	"io"
)

// storedField splits an optional text field into its inline and blob
// representations. Below the threshold the text stays inline; above it the
// full text is zlib-compressed into the blob column and a short preview
// stays inline for listings. Empty fields store as NULL.
func (s *Store) storedField(text string) (inline, blob any) {
	if text == "" {
		return nil, nil
	}
	if len(text) <= s.CompressThreshold {
		return text, nil
	}
	return preview(text, s.PreviewRunes), compressText(text)
}

// loadedField resolves a stored field back to its full text, preferring the
// compressed blob over the inline preview.
func loadedField(inline sql.NullString, blob []byte) (string, error) {
	if len(blob) > 0 {
		return decompressText(blob)
	}
	if inline.Valid {
		return inline.String, nil
	}
	return "", nil
}

func preview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	seen := 0
	for i := range text {
		if seen == limit {
			return text[:i]
		}
		seen++
	}
	return text
}

func compressText(text string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return buf.Bytes()
}

func decompressText(data []byte) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("opening compressed field: %w", err)
	}
	defer func() { _ = r.Close() }()

	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decompressing field: %w", err)
	}
	return string(out), nil
}
