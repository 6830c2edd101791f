package repogen_test

import (
	"encoding/json"
	"testing"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sorter"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/sqlitedb/sqlitedbtest"
)

type Spell struct {
	bun.BaseModel `bun:"table:spells,alias:spell"`

	ID     uuid.UUID `bun:"id,pk,type:uuid"  json:"id"`
	Name   string    `bun:"name,notnull,unique" json:"name"`
	Level  int       `bun:"level,notnull"    json:"level"`
	School string    `bun:"school,notnull"   json:"school"`
	Notes  *string   `bun:"notes"            json:"notes"`
}

type spellCreate struct {
	Name   string
	Level  int
	School string
}

func (c spellCreate) NewEntity() *Spell {
	return &Spell{ID: uuid.New(), Name: c.Name, Level: c.Level, School: c.School}
}

func setup(t *testing.T, seed ...spellCreate) *repogen.Repo[Spell, uuid.UUID] {
	t.Helper()

	db := sqlitedbtest.New(t, (*Spell)(nil))
	repo := repogen.NewBuilder[Spell, uuid.UUID](db).WithSchemaName(sqlitedb.Schema).Build()

	for _, s := range seed {
		_, err := repo.Create(t.Context(), s, false)
		require.NoError(t, err)
	}
	return repo
}

func names(spells []Spell) []string {
	return lo.Map(spells, func(s Spell, _ int) string { return s.Name })
}

var catalog = []spellCreate{ //nolint:gochecknoglobals // test fixture
	{Name: "acid splash", Level: 0, School: "conjuration"},
	{Name: "fireball", Level: 3, School: "evocation"},
	{Name: "shield", Level: 1, School: "abjuration"},
	{Name: "fire bolt", Level: 0, School: "evocation"},
	{Name: "cone of cold", Level: 5, School: "evocation"},
}

func TestRepo_Query_SubstringAlternatives(t *testing.T) {
	repo := setup(t, catalog[:3]...)

	got, total, err := repo.Query(t.Context(), repogen.FilterMap{"name": repogen.Text("acid,fire")}, repogen.QueryOpts{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"acid splash", "fireball"}, names(got))
	assert.Equal(t, 2, total)
}

func TestRepo_Query_TotalIgnoresWindow(t *testing.T) {
	repo := setup(t, catalog...)
	ctx := t.Context()

	filterSets := []repogen.FilterMap{
		{},
		{"name": repogen.Text("fire")},
		{"school": repogen.Text("evocation")},
		{"name": repogen.Text("o"), "level": repogen.Scalar(0)},
	}
	windows := []struct{ offset, limit int }{{0, 1}, {1, 0}, {2, 2}, {10, 5}}

	for _, f := range filterSets {
		all, unpaged, err := repo.Query(ctx, f, repogen.QueryOpts{})
		require.NoError(t, err)
		require.Len(t, all, unpaged)

		for _, w := range windows {
			page, total, err := repo.Query(ctx, f, repogen.QueryOpts{Offset: w.offset, Limit: w.limit})
			require.NoError(t, err)
			assert.Equal(t, unpaged, total, "filters %v window %+v", f.Echo(), w)
			assert.LessOrEqual(t, len(page), total)
		}
	}
}

func TestRepo_Query_AddingFilterNeverWidens(t *testing.T) {
	repo := setup(t, catalog...)
	ctx := t.Context()

	base := repogen.FilterMap{"school": repogen.Text("evocation")}
	_, wide, err := repo.Query(ctx, base, repogen.QueryOpts{})
	require.NoError(t, err)

	narrowed := repogen.FilterMap{"school": base["school"], "name": repogen.Text("fire")}
	_, narrow, err := repo.Query(ctx, narrowed, repogen.QueryOpts{})
	require.NoError(t, err)

	assert.Equal(t, 3, wide)
	assert.Equal(t, 2, narrow)
}

func TestRepo_Query_AlternativesAreUnion(t *testing.T) {
	repo := setup(t, catalog...)
	ctx := t.Context()

	query := func(f repogen.FilterMap) []string {
		got, _, err := repo.Query(ctx, f, repogen.QueryOpts{})
		require.NoError(t, err)
		return names(got)
	}

	fire := query(repogen.FilterMap{"name": repogen.Text("fire")})
	cold := query(repogen.FilterMap{"name": repogen.Text("cold")})
	both := query(repogen.FilterMap{"name": repogen.Text("fire,cold")})

	assert.ElementsMatch(t, lo.Union(fire, cold), both)
}

func TestRepo_Query_Matching(t *testing.T) {
	repo := setup(t, catalog...)

	tests := []struct {
		name    string
		filters repogen.FilterMap
		exact   bool
		want    []string
	}{
		{
			name:    "case insensitive substring",
			filters: repogen.FilterMap{"name": repogen.Text("FIRE")},
			want:    []string{"fireball", "fire bolt"},
		},
		{
			name:    "exact text",
			filters: repogen.FilterMap{"name": repogen.Text("fireball")},
			exact:   true,
			want:    []string{"fireball"},
		},
		{
			name:    "exact text does not match substrings",
			filters: repogen.FilterMap{"name": repogen.Text("fire")},
			exact:   true,
			want:    []string{},
		},
		{
			name:    "scalar is equality",
			filters: repogen.FilterMap{"level": repogen.Scalar(0)},
			want:    []string{"acid splash", "fire bolt"},
		},
		{
			name:    "qualified field name",
			filters: repogen.FilterMap{"spell.school": repogen.Text("abj")},
			want:    []string{"shield"},
		},
		{
			name:    "absent value is unconstrained",
			filters: repogen.FilterMap{"name": repogen.Absent()},
			want:    lo.Map(catalog, func(c spellCreate, _ int) string { return c.Name }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.Query(t.Context(), tt.filters, repogen.QueryOpts{Exact: tt.exact})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(got))
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestRepo_Query_OrderBy(t *testing.T) {
	repo := setup(t, catalog...)

	got, _, err := repo.Query(t.Context(), repogen.FilterMap{}, repogen.QueryOpts{
		OrderBy: sorter.Make(sorter.Opt{F: "level", D: sorter.Desc}, sorter.Opt{F: "name", D: sorter.Asc}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cone of cold", "fireball", "shield", "acid splash", "fire bolt"}, names(got))
}

func TestRepo_Query_UnknownFields(t *testing.T) {
	repo := setup(t)
	ctx := t.Context()

	_, _, err := repo.Query(ctx, repogen.FilterMap{"colour": repogen.Absent()}, repogen.QueryOpts{})
	require.Error(t, err)
	assert.Equal(t, repogen.CodeUnknownFilterField, errx.AsErrorX(err).Code())
	assert.Equal(t, errx.T_Validation, errx.AsErrorX(err).Type())

	_, _, err = repo.Query(ctx, repogen.FilterMap{}, repogen.QueryOpts{
		OrderBy: sorter.Make(sorter.Opt{F: "colour", D: sorter.Asc}),
	})
	require.Error(t, err)
	assert.Equal(t, repogen.CodeUnknownSortField, errx.AsErrorX(err).Code())
}

func TestRepo_ReadByID(t *testing.T) {
	repo := setup(t)
	ctx := t.Context()

	created, err := repo.Create(ctx, spellCreate{Name: "shield", Level: 1, School: "abjuration"}, true)
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := repo.ReadByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "shield", got.Name)

	_, err = repo.ReadByID(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "SPELL_NOT_FOUND", errx.AsErrorX(err).Code())
	assert.Equal(t, errx.T_NotFound, errx.AsErrorX(err).Type())
}

func TestRepo_ReadMulti(t *testing.T) {
	repo := setup(t, catalog...)
	ctx := t.Context()

	all, err := repo.ReadMulti(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, len(catalog))
	assert.True(t, isSortedByID(all))

	page, err := repo.ReadMulti(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, all[1:3], page)

	rest, err := repo.ReadMulti(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, all[2:], rest)
}

func TestRepo_Query_OffsetWithoutLimit(t *testing.T) {
	repo := setup(t, catalog...)
	ctx := t.Context()

	all, _, err := repo.Query(ctx, repogen.FilterMap{}, repogen.QueryOpts{})
	require.NoError(t, err)

	rest, total, err := repo.Query(ctx, repogen.FilterMap{}, repogen.QueryOpts{Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, len(all), total)
	assert.Equal(t, all[2:], rest)
}

func isSortedByID(spells []Spell) bool {
	for i := 1; i < len(spells); i++ {
		if spells[i-1].ID.String() > spells[i].ID.String() {
			return false
		}
	}
	return true
}

func TestRepo_Create(t *testing.T) {
	repo := setup(t)
	ctx := t.Context()

	got, err := repo.Create(ctx, spellCreate{Name: "light", School: "evocation"}, false)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = repo.Create(ctx, spellCreate{Name: "light", School: "evocation"}, true)
	require.Error(t, err)
	assert.Equal(t, repogen.CodeDuplicateKey, errx.AsErrorX(err).Code())
	assert.Equal(t, errx.T_Conflict, errx.AsErrorX(err).Type())
}

func TestRepo_Update(t *testing.T) {
	repo := setup(t)
	ctx := t.Context()

	created, err := repo.Create(ctx, spellCreate{Name: "light", Level: 0, School: "evocation"}, true)
	require.NoError(t, err)
	_, err = repo.Update(ctx, created, patch(t, `{"notes": "bright"}`))
	require.NoError(t, err)

	existing, err := repo.ReadByID(ctx, created.ID)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, existing, patch(t, `{"level": 1, "unknown": true, "id": "`+uuid.NewString()+`"}`))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	stored, err := repo.ReadByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Level)
	assert.Equal(t, "light", stored.Name)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "bright", *stored.Notes)

	_, err = repo.Update(ctx, stored, patch(t, `{"notes": null}`))
	require.NoError(t, err)
	stored, err = repo.ReadByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Notes)

	_, err = repo.Update(ctx, stored, patch(t, `{"level": "high"}`))
	require.Error(t, err)
	assert.Equal(t, repogen.CodeInvalidData, errx.AsErrorX(err).Code())
}

func patch(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestRepo_Delete(t *testing.T) {
	repo := setup(t)
	ctx := t.Context()

	created, err := repo.Create(ctx, spellCreate{Name: "light", School: "evocation"}, true)
	require.NoError(t, err)

	id, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, created.ID, *id)

	id, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, id)
}
