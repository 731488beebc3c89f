package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/submission"
)

// draftFile is the on-disk description of a listing to submit.
type draftFile struct {
	Fields    map[string]string   `json:"fields"`
	Amenities []string            `json:"amenities"`
	UnitTypes []map[string]string `json:"unitTypes"`
	Media     []string            `json:"media"`
}

func readDraftFile(path string) (*draftFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file: %w", err)
	}
	var df draftFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("failed to parse draft file %s: %w", path, err)
	}
	return &df, nil
}

// apply copies the file into the pipeline. Relative media paths are resolved
// against the draft file's directory.
func (df *draftFile) apply(p *submission.Pipeline, baseDir string) error {
	paths := make([]string, 0, len(df.Fields))
	for path := range df.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := p.UpdateField(path, df.Fields[path]); err != nil {
			return err
		}
	}

	if len(df.Amenities) > 0 {
		if err := p.SetAmenities(df.Amenities); err != nil {
			return err
		}
	}

	for _, ut := range df.UnitTypes {
		idx, err := p.AddUnitType()
		if err != nil {
			return err
		}
		for field, value := range ut {
			if err := p.UpdateUnitType(idx, field, value); err != nil {
				return err
			}
		}
	}

	files := make([]domain.MediaFile, 0, len(df.Media))
	for _, m := range df.Media {
		if !filepath.IsAbs(m) {
			m = filepath.Join(baseDir, m)
		}
		f, err := loadMedia(m)
		if err != nil {
			return err
		}
		files = append(files, f)
	}
	if len(files) > 0 {
		if _, err := p.AttachMedia(files...); err != nil {
			return err
		}
	}
	return nil
}

func loadMedia(path string) (domain.MediaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.MediaFile{}, fmt.Errorf("failed to read media %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return domain.MediaFile{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
