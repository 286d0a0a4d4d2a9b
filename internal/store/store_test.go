package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-atlas/internal/model"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return AttachDB(db), mock
}

func TestReplaceGenealogy(t *testing.T) {
	s, mock := newMock(t)
	persons := []model.Person{{
		ExternalID: "I1", GivenName: "John", Surname: "Smith", Sex: model.SexMale,
		Birth: model.Vital{Date: "1950", Place: "Sydney"}, Position: 0,
	}}
	links := []model.FamilyLink{{ExternalFamilyID: "F1", HusbandID: "I1", Position: 0}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fa_events").WithArgs("owner-1", model.SourceGedcom).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM fa_family_links").WithArgs("owner-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM fa_persons").WithArgs("owner-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO fa_persons").
		WithArgs("owner-1", 0, "I1", "John", "Smith", "M", "1950", "Sydney", "", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO fa_family_links").
		WithArgs("owner-1", 0, "F1", "I1", "", pq.Array([]string{})).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceGenealogy(context.Background(), "owner-1", persons, links))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGenealogyRollsBackOnFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fa_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM fa_family_links").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM fa_persons").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO fa_persons").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.ReplaceGenealogy(context.Background(), "o", []model.Person{{ExternalID: "I1"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert person I1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvent(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ev := model.Event{
		ID: "e1", OwnerID: "o", PersonName: "John Smith", Title: "John Smith - Birth",
		Description: "Born in Sydney (1950)", Date: "1950-01-01", RawDate: "1950", Place: "Sydney",
		Category: "birth", Latitude: -33.86, Longitude: 151.2, Geohash: "r3gx2f9", Source: model.SourceGedcom, CreatedAt: now,
	}
	mock.ExpectExec("INSERT INTO fa_events").
		WithArgs("e1", "o", "John Smith", "John Smith - Birth", "Born in Sydney (1950)", "1950-01-01", "1950",
			"Sydney", "birth", -33.86, 151.2, "r3gx2f9", "gedcom", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.InsertEvent(context.Background(), ev))

	mock.ExpectExec("INSERT INTO fa_events").WillReturnError(errors.New("conn reset"))
	require.Error(t, s.InsertEvent(context.Background(), ev))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadGenealogy(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM fa_persons").WithArgs("o").WillReturnRows(
		sqlmock.NewRows([]string{"position", "external_id", "given_name", "surname", "sex", "birth_date", "birth_place", "death_date", "death_place", "burial_place"}).
			AddRow(0, "I1", "John", "Smith", "M", "1950", "Sydney", "", "", "").
			AddRow(1, "I2", "Mary", "Jones", "F", "", "", "2001", "Hobart", "Cornelian Bay"))
	mock.ExpectQuery("FROM fa_family_links").WithArgs("o").WillReturnRows(
		sqlmock.NewRows([]string{"position", "external_family_id", "husband_id", "wife_id", "child_ids"}).
			AddRow(0, "F1", "I1", "I2", "{I3,I4}"))

	persons, links, err := s.LoadGenealogy(context.Background(), "o")
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, model.SexFemale, persons[1].Sex)
	assert.Equal(t, "Cornelian Bay", persons[1].BurialPlace)
	assert.Equal(t, 1, persons[1].Position)
	require.Len(t, links, 1)
	assert.Equal(t, []string{"I3", "I4"}, links[0].ChildIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMembersAndRelationships(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM fa_members").WithArgs("o").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "sex", "birth_date", "death_date"}).
			AddRow("m1", "Grace", "F", "1906", ""))
	mock.ExpectQuery("FROM fa_relationships").WithArgs("o").WillReturnRows(
		sqlmock.NewRows([]string{"from_id", "to_id", "rel_type"}).
			AddRow("m1", "m2", "parent").
			AddRow("m1", "m3", "spouse"))

	members, err := s.LoadMembers(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, []model.Member{{ID: "m1", Name: "Grace", Sex: model.SexFemale, BirthDate: "1906"}}, members)

	rels, err := s.LoadRelationships(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, []model.Relationship{
		{FromID: "m1", ToID: "m2", Type: model.RelationParent},
		{FromID: "m1", ToID: "m3", Type: model.RelationSpouse},
	}, rels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsQueryError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM fa_events").WillReturnError(errors.New("boom"))
	_, err := s.ListEvents(context.Background(), "o")
	require.Error(t, err)
}

func TestMemoryReplaceKeepsManualEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertEvent(ctx, model.Event{ID: "manual", OwnerID: "o", Date: "1990-01-01", Source: "manual"}))
	require.NoError(t, m.InsertEvent(ctx, model.Event{ID: "old", OwnerID: "o", Date: "1980-01-01", Source: model.SourceGedcom}))

	links := []model.FamilyLink{{ExternalFamilyID: "F1", ChildIDs: []string{"I2"}}}
	require.NoError(t, m.ReplaceGenealogy(ctx, "o", []model.Person{{ExternalID: "I1"}}, links))
	links[0].ChildIDs[0] = "mutated"

	evs, err := m.ListEvents(ctx, "o")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "manual", evs[0].ID)

	persons, stored, err := m.LoadGenealogy(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, persons, 1)
	assert.Equal(t, []string{"I2"}, stored[0].ChildIDs)

	other, _, err := m.LoadGenealogy(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryMembers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AddMember(ctx, "o", model.Member{ID: "a", Name: "A"}))
	require.NoError(t, m.AddMember(ctx, "o", model.Member{ID: "b", Name: "B"}))
	require.NoError(t, m.AddMember(ctx, "o", model.Member{ID: "a", Name: "A2"}))
	require.NoError(t, m.AddRelationship(ctx, "o", model.Relationship{FromID: "a", ToID: "b", Type: model.RelationParent}))

	members, err := m.LoadMembers(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, []model.Member{{ID: "a", Name: "A2"}, {ID: "b", Name: "B"}}, members)
	rels, err := m.LoadRelationships(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestAddMemberUpserts(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO fa_members.*ON CONFLICT \(owner_id, id\) DO UPDATE`).
		WithArgs("o", "m1", "Grace Hopper", "F", "1906", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.AddMember(context.Background(), "o", model.Member{ID: "m1", Name: "Grace Hopper", Sex: model.SexFemale, BirthDate: "1906"}))

	mock.ExpectExec("INSERT INTO fa_members").WillReturnError(errors.New("conn reset"))
	err := s.AddMember(context.Background(), "o", model.Member{ID: "m2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add member")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRelationship(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO fa_relationships\(owner_id, from_id, to_id, rel_type\)`).
		WithArgs("o", "m1", "m2", "spouse").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.AddRelationship(context.Background(), "o", model.Relationship{FromID: "m1", ToID: "m2", Type: model.RelationSpouse}))

	mock.ExpectExec("INSERT INTO fa_relationships").WillReturnError(errors.New("check violation"))
	require.Error(t, s.AddRelationship(context.Background(), "o", model.Relationship{FromID: "a", ToID: "b", Type: "cousin"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsScansRows(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM fa_events WHERE owner_id=\\$1 ORDER BY event_date").WithArgs("o").WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner_id", "person_name", "title", "description", "event_date", "raw_date",
			"place", "category", "latitude", "longitude", "geohash", "source", "created_at"}).
			AddRow("e1", "o", "John Smith", "John Smith - Birth", "Born in Sydney (1950)", "1950-01-01", "1950",
				"Sydney", "birth", -33.86, 151.2, "r3gx2f9", "gedcom", now))

	evs, err := s.ListEvents(context.Background(), "o")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "r3gx2f9", evs[0].Geohash)
	assert.Equal(t, 151.2, evs[0].Longitude)
	assert.Equal(t, now, evs[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
