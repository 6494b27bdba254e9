package catalog

import (
	"context"
	"os"
	"path/filepath"
	"route-planner-service/internal/services"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestFileSourceLoadsDataset(t *testing.T) {
	src := NewFileSource("../../../data/catalog/catalog.json")

	entries, err := src.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 8)

	byID := map[string]int{}
	for i, e := range entries {
		byID[e.ID] = i
	}

	sofa := entries[byID["sofa-3-seater"]]
	require.NotNil(t, sofa.MassKg)
	require.NotNil(t, sofa.VolumeM3)
	require.InDelta(t, 45.0, *sofa.MassKg, 1e-9)
	require.InDelta(t, 1.8, *sofa.VolumeM3, 1e-9)

	tv := entries[byID["tv-55"]]
	require.NotNil(t, tv.MassKg)
	require.Nil(t, tv.VolumeM3)
	require.True(t, tv.Fragile)

	box := entries[byID["box-medium"]]
	require.Equal(t, "/images/items/box_medium.jpg", box.ImagePath)
	require.False(t, box.NeedsDisassembly)
	require.Equal(t, 1, box.WorkersRequired)

	wardrobe := entries[byID["wardrobe-double"]]
	require.Equal(t, "bedroom", wardrobe.Category)
	require.True(t, wardrobe.NeedsDisassembly)
	require.Equal(t, 2, wardrobe.WorkersRequired)
}

func TestFileSourceHandlingFlags(t *testing.T) {
	p := writeCatalog(t, `{"metadata":{},"items":[
		{"id":"a","name":"A","weight":1,"dismantling_required":true,"workers_required":"3"},
		{"id":"b","name":"B","weight":1,"needs_disassembly":true,"workers_required":0},
		{"id":"c","name":"C","weight":1}
	]}`)

	entries, err := NewFileSource(p).LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.True(t, entries[0].NeedsDisassembly)
	require.Equal(t, 3, entries[0].WorkersRequired)
	require.True(t, entries[1].NeedsDisassembly)
	require.Equal(t, 0, entries[1].WorkersRequired)
	require.False(t, entries[2].NeedsDisassembly)
	require.Equal(t, 1, entries[2].WorkersRequired)

	_, err = NewFileSource(writeCatalog(t, `{"items":[{"id":"a","workers_required":1.5}]}`)).LoadCatalog(context.Background())
	require.Error(t, err)
}

func TestFileSourceFlexibleNumbers(t *testing.T) {
	p := writeCatalog(t, `{"metadata":{},"items":[
		{"id":"a","name":"A","mass_kg":"12.5","volume_m3":0.4},
		{"id":"b","name":"B","weight":3,"volume":""},
		{"id":"c","name":"C","weight":null}
	]}`)

	entries, err := NewFileSource(p).LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.InDelta(t, 12.5, *entries[0].MassKg, 1e-9)
	require.InDelta(t, 0.4, *entries[0].VolumeM3, 1e-9)
	require.InDelta(t, 3.0, *entries[1].MassKg, 1e-9)
	require.Nil(t, entries[1].VolumeM3)
	require.Nil(t, entries[2].MassKg)
}

func TestFileSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFileSource("").LoadCatalog(ctx)
	require.Error(t, err)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).LoadCatalog(ctx)
	require.Error(t, err)

	_, err = NewFileSource(writeCatalog(t, `{"items":[{"id":"a","weight":"heavy"}]}`)).LoadCatalog(ctx)
	require.Error(t, err)

	_, err = NewFileSource(writeCatalog(t, `{"metadata":{}}`)).LoadCatalog(ctx)
	require.Error(t, err)
}

func TestFileSourceFeedsCatalog(t *testing.T) {
	c := services.NewCatalog(NewFileSource("../../../data/catalog/catalog.json"))
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, 8, c.Size())
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("file", "catalog.json", nil)
	require.NoError(t, err)
	require.IsType(t, &FileSource{}, src)

	_, err = NewSource("postgres", "", nil)
	require.Error(t, err)

	_, err = NewSource("s3", "", nil)
	require.Error(t, err)
}
