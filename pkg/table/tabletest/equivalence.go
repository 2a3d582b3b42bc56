package tabletest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/value"
)

// Equivalent loads the same users into a fresh table from each factory,
// replays identical mutations and checks that a grid of queries returns the
// same entries in the same order.
func Equivalent(t *testing.T, want, got Factory) {
	ctx := context.Background()
	a, b := want.Users(t), got.Users(t)

	var users []directory.User
	for i := range 30 {
		u := SampleUsers[i%len(SampleUsers)]
		u.BannerID += int32(i)
		u.Email = fmt.Sprintf("%d.%s", i, u.Email)
		users = append(users, u)
	}
	for _, tbl := range []Users{a, b} {
		keys := insertAll(t, tbl, users...)
		require.NoError(t, tbl.Remove(ctx, keys[3]))
		require.NoError(t, tbl.Remove(ctx, keys[17]))
		renamed := users[8]
		renamed.LastName = "Hopper"
		require.NoError(t, tbl.Update(ctx, keys[8], renamed))
	}

	var queries []query.Query[directory.UserField]
	for _, field := range directory.Users.FieldNames() {
		for _, dir := range []query.SortDirection{query.Asc, query.Desc} {
			for _, size := range []int{1, 4, 7, 200} {
				for number := 1; number <= 3; number++ {
					queries = append(queries, query.GetAll[directory.UserField]{Page: userPage(size, field, dir, number)})
				}
			}
		}
	}
	page := userPage(5, directory.UserLastName, query.Desc, 1)
	queries = append(queries,
		query.Search[directory.UserField]{Field: directory.UserLastName, Value: value.String("Hopper"), Page: page},
		query.Search[directory.UserField]{Field: directory.UserGPA, Value: value.Float(3.5), Page: page},
		query.Search[directory.UserField]{Field: directory.UserActive, Value: value.Boolean(false), Page: userPage(3, directory.UserGPA, query.Asc, 2)},
		query.PartialSearch[directory.UserField]{Field: directory.UserEmail, Value: value.String("students"), Page: page},
		query.PartialSearch[directory.UserField]{Field: directory.UserFirstName, Value: value.String("a"), Page: userPage(50, directory.UserBannerID, query.Asc, 1)},
		query.MultiSearch[directory.UserField]{
			Fields: []directory.UserField{directory.UserActive, directory.UserGPA},
			Values: []value.Value{value.Boolean(true), value.Float(3.5)},
			Page:   userPage(2, directory.UserEmail, query.Asc, 2),
		},
	)

	for i, q := range queries {
		wantRows, err := a.Query(ctx, q, nil)
		require.NoError(t, err, "query %d (%s)", i, q.Name())
		gotRows, err := b.Query(ctx, q, nil)
		require.NoError(t, err, "query %d (%s)", i, q.Name())
		assert.Equal(t, Entries(wantRows), Entries(gotRows), "query %d: %#v", i, q)
	}

	for _, field := range []directory.UserField{directory.UserLastName, directory.UserActive} {
		v, err := directory.Users.Field(users[0], field)
		require.NoError(t, err)
		wantRows, err := a.Search(ctx, field, v)
		require.NoError(t, err)
		gotRows, err := b.Search(ctx, field, v)
		require.NoError(t, err)
		assert.Equal(t, Entries(wantRows), Entries(gotRows), "search %s", field)
	}
}
