package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-atlas/internal/geocode"
	"family-atlas/internal/model"
	"family-atlas/internal/store"
)

type fakeLookup struct {
	mu      sync.Mutex
	answers map[string][]geocode.Candidate
	queries []string
}

func (f *fakeLookup) Search(_ context.Context, q string) ([]geocode.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.answers[q], nil
}

func newImporter(t *testing.T, answers map[string][]geocode.Candidate) (*Importer, *store.Memory, *fakeLookup) {
	t.Helper()
	lk := &fakeLookup{answers: answers}
	repo := store.NewMemory()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	im := New(repo, geocode.New(lk, geocode.Options{}), Options{
		Now:   func() time.Time { return fixed },
		NewID: func() string { n++; return "ev-" + string(rune('0'+n)) },
	})
	return im, repo, lk
}

const johnSmith = `0 @I1@ INDI
1 NAME John /Smith/
1 BIRT
2 DATE 12 OCT 1982
2 PLAC Sydney, Australia
`

func TestImportSingleGeocodedBirth(t *testing.T) {
	im, repo, _ := newImporter(t, map[string][]geocode.Candidate{
		"Sydney, Australia": {{Lat: "-33.8", Lon: "151.2"}},
	})
	res, err := im.Import(context.Background(), strings.NewReader(johnSmith), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{"John Smith"}, res.PeopleDisplayNames)
	assert.Equal(t, 1, res.PeopleCount)
	assert.Equal(t, 0, res.FamilyLinkCount)
	assert.Equal(t, "Imported 1 events for 1 people (0 skipped); stored 1 people and 0 family links", res.Message)

	evs, err := repo.ListEvents(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	ev := evs[0]
	assert.Equal(t, "John Smith - Birth", ev.Title)
	assert.Equal(t, "birth", ev.Category)
	assert.Equal(t, -33.8, ev.Latitude)
	assert.Equal(t, 151.2, ev.Longitude)
	assert.Equal(t, "1982-10-12", ev.Date)
	assert.Equal(t, "12 OCT 1982", ev.RawDate)
	assert.Equal(t, model.SourceGedcom, ev.Source)
	assert.Equal(t, "ev-1", ev.ID)
	assert.Len(t, ev.Geohash, geohashPrecision)
	assert.True(t, strings.HasPrefix(ev.Geohash, "r3"), ev.Geohash)
}

func TestImportUnresolvedPlaceSkipped(t *testing.T) {
	im, _, lk := newImporter(t, nil)
	in := "0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE 1982\n2 PLAC Sydney\n" +
		"0 @I2@ INDI\n1 NAME Ann /Smith/\n1 BIRT\n2 DATE 1984\n2 PLAC Nowhere Town\n"
	lk.answers = map[string][]geocode.Candidate{"Sydney, Australia": {{Lat: "-33.8", Lon: "151.2"}}}
	res, err := im.Import(context.Background(), strings.NewReader(in), "o")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"John Smith"}, res.PeopleDisplayNames)
	assert.Equal(t, []string{"Sydney, Australia", "Nowhere Town"}, lk.queries)
}

func TestImportQuestionMarkPlaceSkippedWithoutLookup(t *testing.T) {
	im, repo, lk := newImporter(t, nil)
	in := "0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE 12 OCT 1982\n2 PLAC ?\n"
	res, err := im.Import(context.Background(), strings.NewReader(in), "o")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.PeopleDisplayNames)
	assert.Empty(t, lk.queries)
	assert.Equal(t, "Imported 0 events for 0 people (1 skipped); stored 1 people and 0 family links", res.Message)

	evs, err := repo.ListEvents(context.Background(), "o")
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestImportQuestionMarkAlongsideUnresolvedPlace(t *testing.T) {
	im, _, lk := newImporter(t, nil)
	in := "0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE 1982\n2 PLAC ?\n1 DEAT\n2 DATE 2001\n2 PLAC Perth\n"
	lk.answers = map[string][]geocode.Candidate{}
	res, err := im.Import(context.Background(), strings.NewReader(in), "o")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"Perth, Australia"}, lk.queries)
}

func TestImportNothingDerivable(t *testing.T) {
	im, _, lk := newImporter(t, nil)
	// 日期无法归一化的 "?" 地点不计为跳过
	in := "0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE Unknown\n2 PLAC ?\n1 DEAT\n2 DATE 1950\n"
	res, err := im.Import(context.Background(), strings.NewReader(in), "o")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, lk.queries)
	assert.Equal(t, "No datable events with places found; stored 1 people and 0 family links", res.Message)
}

func TestImportReplacesPreviousState(t *testing.T) {
	im, repo, _ := newImporter(t, map[string][]geocode.Candidate{
		"Sydney, Australia": {{Lat: "-33.8", Lon: "151.2"}},
	})
	ctx := context.Background()
	_, err := im.Import(ctx, strings.NewReader(johnSmith+"0 @I2@ INDI\n1 NAME Extra\n0 @F1@ FAM\n1 HUSB @I1@\n1 CHIL @I2@\n"), "o")
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader("0 @I9@ INDI\n1 NAME Solo /Person/\n"), "o")
	require.NoError(t, err)
	assert.Equal(t, 1, res.PeopleCount)

	persons, links, err := repo.LoadGenealogy(ctx, "o")
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "I9", persons[0].ExternalID)
	assert.Empty(t, links)
	evs, err := repo.ListEvents(ctx, "o")
	require.NoError(t, err)
	assert.Empty(t, evs)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("io broken") }

func TestImportUnreadableInput(t *testing.T) {
	im, _, _ := newImporter(t, nil)
	res, err := im.Import(context.Background(), failingReader{}, "o")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInputUnreadable)
}

type brokenRepo struct {
	replaceErr error
	insertErr  error
}

func (b brokenRepo) ReplaceGenealogy(context.Context, string, []model.Person, []model.FamilyLink) error {
	return b.replaceErr
}
func (b brokenRepo) InsertEvent(context.Context, model.Event) error { return b.insertErr }

func TestImportRepositoryFailures(t *testing.T) {
	lk := &fakeLookup{answers: map[string][]geocode.Candidate{"Sydney, Australia": {{Lat: "1", Lon: "2"}}}}
	svc := geocode.New(lk, geocode.Options{})

	dbErr := errors.New("db down")
	_, err := New(brokenRepo{replaceErr: dbErr}, svc, Options{}).Import(context.Background(), strings.NewReader(johnSmith), "o")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInputUnreadable)
	assert.Empty(t, lk.queries)

	_, err = New(brokenRepo{insertErr: dbErr}, svc, Options{}).Import(context.Background(), strings.NewReader(johnSmith), "o")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestImportProgressForwarded(t *testing.T) {
	lk := &fakeLookup{}
	var calls [][2]int
	im := New(store.NewMemory(), geocode.New(lk, geocode.Options{}), Options{
		Progress: func(done, total int) { calls = append(calls, [2]int{done, total}) },
	})
	in := "0 @I1@ INDI\n1 BIRT\n2 DATE 1900\n2 PLAC Bath, England\n1 DEAT\n2 DATE 1950\n2 PLAC Bath, England\n1 BURI\n2 PLAC Wells, England\n"
	res, err := im.Import(context.Background(), strings.NewReader(in), "o")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}
