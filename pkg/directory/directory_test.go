package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

func TestDepartment_RoundTrip(t *testing.T) {
	ece := Department{Name: "Electrical and Computer Engineering", Abbreviation: "ECE"}

	fields, err := Departments.Fields(ece)
	require.NoError(t, err)
	assert.Len(t, fields, len(Departments.FieldNames()))

	back, err := Departments.FromFields(fields)
	require.NoError(t, err)
	assert.Equal(t, ece, back)

	abbr, err := Departments.Field(ece, DepartmentAbbreviation)
	require.NoError(t, err)
	assert.True(t, value.String("ECE").Equal(abbr))
}

func TestUser_RoundTrip(t *testing.T) {
	nick := User{
		FirstName: "Nick",
		LastName:  "Kluzynski",
		Email:     "kluzynskn6@students.rowan.edu",
		BannerID:  916181533,
		GPA:       3.5,
		Active:    true,
	}

	fields, err := Users.Fields(nick)
	require.NoError(t, err)
	back, err := Users.FromFields(fields)
	require.NoError(t, err)
	assert.Equal(t, nick, back)

	_, err = Users.FromFields(fields[:4])
	assert.ErrorIs(t, err, record.ErrSchemaMismatch)
}

func TestFieldNames_RoundTrip(t *testing.T) {
	for _, f := range Departments.FieldNames() {
		parsed, err := ParseDepartmentField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	for _, f := range Users.FieldNames() {
		parsed, err := ParseUserField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseUserField("middlename")
	assert.ErrorIs(t, err, record.ErrFieldNotMatched)
	assert.Equal(t, "", UserField(-1).String())
}

func TestFieldOrder(t *testing.T) {
	assert.Equal(t, []DepartmentField{DepartmentName, DepartmentAbbreviation}, Departments.FieldNames())
	assert.Equal(t, []UserField{UserFirstName, UserLastName, UserEmail, UserBannerID, UserGPA, UserActive}, Users.FieldNames())
}
