package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/submission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollaborators struct{}

func (stubCollaborators) Upload(context.Context, port.Credential, domain.MediaFile, string) (string, error) {
	return "http://assets/x.jpg", nil
}

func (stubCollaborators) Geocode(context.Context, string) ([]domain.GeoCandidate, error) {
	return nil, nil
}

func (stubCollaborators) Create(_ context.Context, _ port.Credential, l *domain.Listing) (*domain.Listing, error) {
	l.ID = uuid.New()
	return l, nil
}

func (stubCollaborators) Update(_ context.Context, _ port.Credential, id uuid.UUID, l *domain.Listing) (*domain.Listing, error) {
	l.ID = id
	return l, nil
}

func newTestPipeline(t *testing.T, kind domain.Kind) *submission.Pipeline {
	t.Helper()
	p, err := submission.NewPipeline(submission.Config{
		Kind:         kind,
		Uploader:     stubCollaborators{},
		Geocoder:     stubCollaborators{},
		Writer:       stubCollaborators{},
		TimerFactory: func(time.Duration, func()) submission.Timer { return noTimer{} },
	})
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDraftFileApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "front.jpg", "not decoded client side")
	path := writeFile(t, dir, "draft.json", `{
		"fields": {"title": "Sea view flat", "address.city": "Mumbai", "price": "4500000"},
		"media": ["front.jpg"]
	}`)

	df, err := readDraftFile(path)
	require.NoError(t, err)

	p := newTestPipeline(t, domain.KindProperty)
	require.NoError(t, df.apply(p, dir))

	d := p.Draft()
	assert.Equal(t, "Sea view flat", d.Fields["title"])
	assert.Equal(t, "Mumbai", d.Fields["address.city"])
	assert.Equal(t, "4500000", d.Fields["price"])
	require.Len(t, d.PendingMedia, 1)
	assert.Equal(t, "front.jpg", d.PendingMedia[0].File.Name)
	assert.Equal(t, "image/jpeg", d.PendingMedia[0].File.ContentType)
}

func TestDraftFileApplyUnitTypes(t *testing.T) {
	df := &draftFile{UnitTypes: []map[string]string{
		{"label": "2BHK", "sizeRange.min": "800", "sizeRange.max": "950"},
	}}

	p := newTestPipeline(t, domain.KindProject)
	require.NoError(t, df.apply(p, t.TempDir()))

	d := p.Draft()
	require.Len(t, d.UnitTypes, 1)
	assert.Equal(t, "2BHK", d.UnitTypes[0].Label)
	assert.Equal(t, "800", d.UnitTypes[0].SizeMin)
	assert.Equal(t, "950", d.UnitTypes[0].SizeMax)
}

func TestDraftFileApplyRejectsUnknownField(t *testing.T) {
	df := &draftFile{Fields: map[string]string{"address.zip": "400001"}}

	err := df.apply(newTestPipeline(t, domain.KindProperty), t.TempDir())
	assert.ErrorIs(t, err, submission.ErrUnknownField)
}

func TestDraftFileMissingMedia(t *testing.T) {
	df := &draftFile{Media: []string{"missing.png"}}

	err := df.apply(newTestPipeline(t, domain.KindProperty), t.TempDir())
	assert.Error(t, err)
}

func TestReadDraftFileMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "draft.json", `{"fields": [}`)

	_, err := readDraftFile(path)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.jpg", "b.png"}, splitList(" a.jpg, ,b.png "))
	assert.Nil(t, splitList(""))
}
