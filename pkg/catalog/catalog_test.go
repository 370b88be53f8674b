package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mespms/clinicalforms/pkg/catalog"
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
	"github.com/mespms/clinicalforms/pkg/testsupport"
)

var (
	admin        = session.User{ID: 1, FirstName: "Ana", LastName: "Cruz", Role: session.RoleAdmin}
	practitioner = session.User{ID: 2, FirstName: "Ben", LastName: "Reyes", Role: session.RolePractitioner}
)

func listFixture() []schema.Template {
	structure := testsupport.IntakeStructure()
	return []schema.Template{
		{ID: 1, Name: "Knee Intake", Description: "Initial knee assessment", Category: schema.CategoryInitial, Structure: structure, Version: 1, IsActive: true, IsLatestVersion: true},
		{ID: 2, Name: "Daily SOAP", Description: "Standard progress", Category: schema.CategorySOAP, Version: 3, IsActive: true},
		{ID: 3, Name: "Old Discharge", Description: "Replaced by KNEE discharge", Category: schema.CategoryDischarge, IsArchived: true, IsActive: true},
	}
}

func ids(templates []schema.Template) []int64 {
	out := make([]int64, len(templates))
	for i, t := range templates {
		out[i] = t.ID
	}
	return out
}

func TestApply_Filters(t *testing.T) {
	templates := listFixture()

	require.Equal(t, []int64{1, 2}, ids(catalog.Apply(templates, catalog.Filter{})))
	require.Equal(t, []int64{1, 2, 3}, ids(catalog.Apply(templates, catalog.Filter{ShowArchived: true})))
	require.Equal(t, []int64{1}, ids(catalog.Apply(templates, catalog.Filter{Search: "knee"})))
	require.Equal(t, []int64{1, 3}, ids(catalog.Apply(templates, catalog.Filter{Search: "KNEE", ShowArchived: true})))
	require.Equal(t, []int64{2}, ids(catalog.Apply(templates, catalog.Filter{Search: "progress"})))
	require.Equal(t, []int64{2}, ids(catalog.Apply(templates, catalog.Filter{Category: schema.CategorySOAP})))
	require.Empty(t, catalog.Apply(templates, catalog.Filter{Category: schema.CategoryCustom}))
}

func TestRows_ActionsAndSummary(t *testing.T) {
	rows := catalog.Rows(listFixture(), catalog.Filter{ShowArchived: true}, admin)
	require.Len(t, rows, 3)

	require.Equal(t, "Initial", rows[0].CategoryLabel)
	require.Equal(t, 2, rows[0].Sections)
	require.Equal(t, 12, rows[0].Fields)
	require.True(t, rows[0].Latest)
	require.Equal(t, catalog.Actions{Edit: true, NewVersion: true, Archive: true}, rows[0].Actions)

	// archived rows never offer edit or new version, even when still active
	require.True(t, rows[2].Actions.None())
	require.False(t, rows[2].Latest)

	for _, row := range catalog.Rows(listFixture(), catalog.Filter{}, practitioner) {
		require.True(t, row.Actions.None(), "row %d", row.Template.ID)
	}
}

func TestSeedVersion_DoesNotAliasSource(t *testing.T) {
	source := schema.Template{ID: 5, Version: 2, Name: "Shoulder", Category: schema.CategoryProgress, Structure: testsupport.IntakeStructure()}

	draft, err := catalog.SeedVersion(source)
	require.NoError(t, err)
	require.Equal(t, int64(5), draft.ParentTemplate)
	require.Equal(t, 2, draft.BaseVersion)

	draft.Structure.Sections[0].Title = "Changed"
	draft.Structure.Sections[0].Fields[0].Label = "Changed"
	require.Equal(t, "Subjective", source.Structure.Sections[0].Title)
	require.Equal(t, "Chief Complaint", source.Structure.Sections[0].Fields[0].Label)

	source.IsArchived = true
	_, err = catalog.SeedVersion(source)
	require.ErrorIs(t, err, catalog.ErrArchived)
}

func TestMemoryStore_VersionLineage(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := catalog.NewMemoryStore(catalog.WithClock(func() time.Time { return clock }))

	original, err := store.Create(ctx, admin, schema.Template{
		Name: "Knee Intake", Category: schema.CategoryInitial, Structure: testsupport.IntakeStructure(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, original.Version)
	require.Nil(t, original.ParentTemplate)
	require.Equal(t, "Ana Cruz", original.CreatedByName)

	draft, err := catalog.SeedVersion(original)
	require.NoError(t, err)
	draft.Name = "Knee Intake v2"
	second, err := store.CreateVersion(ctx, admin, draft)
	require.NoError(t, err)
	require.Equal(t, 2, second.Version)
	require.Equal(t, original.ID, *second.ParentTemplate)
	require.True(t, second.IsLatestVersion)

	// versioning from an older record still continues the lineage
	draft, err = catalog.SeedVersion(original)
	require.NoError(t, err)
	third, err := store.CreateVersion(ctx, admin, draft)
	require.NoError(t, err)
	require.Equal(t, 3, third.Version)

	stored, err := store.Get(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, "Knee Intake", stored.Name)
	require.Equal(t, 1, stored.Version)
	require.False(t, stored.IsActive)
	require.False(t, stored.IsLatestVersion)

	lineage, err := store.Lineage(ctx, third.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{original.ID, second.ID, third.ID}, ids(lineage))
	latest := 0
	for _, tpl := range lineage {
		if tpl.IsLatestVersion {
			latest++
		}
	}
	require.Equal(t, 1, latest)

	active, err := store.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{third.ID}, ids(active))
}

func TestMemoryStore_ArchiveAndPermissions(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()

	_, err := store.Create(ctx, practitioner, schema.Template{Name: "X", Category: schema.CategoryCustom})
	require.ErrorIs(t, err, catalog.ErrForbidden)

	tpl, err := store.Create(ctx, admin, schema.Template{Name: "Discharge", Category: schema.CategoryDischarge, Structure: testsupport.IntakeStructure()})
	require.NoError(t, err)

	archived, err := store.Archive(ctx, admin, tpl.ID)
	require.NoError(t, err)
	require.True(t, archived.IsArchived)
	require.False(t, archived.IsActive)

	_, err = store.CreateVersion(ctx, admin, catalog.VersionDraft{ParentTemplate: tpl.ID, Name: "Discharge", Category: schema.CategoryDischarge})
	require.ErrorIs(t, err, catalog.ErrArchived)

	_, err = store.Archive(ctx, admin, 99)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	// returned records are copies
	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	got.Structure.Sections[0].Title = "Mutated"
	again, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	require.Equal(t, "Subjective", again.Structure.Sections[0].Title)
}

func TestMemoryStore_RejectsInvalidStructure(t *testing.T) {
	store := catalog.NewMemoryStore()
	_, err := store.Create(context.Background(), admin, schema.Template{
		Name:     "Broken",
		Category: schema.CategoryCustom,
		Structure: schema.Structure{Sections: []schema.Section{{
			ID: "s", Title: "S",
			Fields: []schema.Field{{ID: "x", Label: "X", Spec: schema.SelectSpec{}}},
		}}},
	})
	require.ErrorIs(t, err, schema.ErrMalformedStructure)
}
