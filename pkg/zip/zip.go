// Package zip bundles uploaded training photos into a single archive for
// storage and downstream model training.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs the assets into a zip archive. Assets without a
// filename are numbered; duplicate names are suffixed to stay unique.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(assets))
	for i, asset := range assets {
		base := asset.Filename
		if base == "" {
			base = fmt.Sprintf("asset-%03d", i)
		}
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		seen[base]++
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create entry %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
