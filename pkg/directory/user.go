package directory

import (
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// User is a person enrolled in or employed by the university.
type User struct {
	FirstName string  `json:"firstname"`
	LastName  string  `json:"lastname"`
	Email     string  `json:"email"`
	BannerID  int32   `json:"bannerID"`
	GPA       float32 `json:"gpa"`
	Active    bool    `json:"active"`
}

// UserField enumerates User fields in declaration order.
type UserField int

const (
	UserFirstName UserField = iota
	UserLastName
	UserEmail
	UserBannerID
	UserGPA
	UserActive
)

var userFieldNames = [...]string{
	UserFirstName: "firstname",
	UserLastName:  "lastname",
	UserEmail:     "email",
	UserBannerID:  "bannerID",
	UserGPA:       "gpa",
	UserActive:    "active",
}

func (f UserField) String() string {
	if f < 0 || int(f) >= len(userFieldNames) {
		return ""
	}
	return userFieldNames[f]
}

// ParseUserField parses the string form of a UserField.
func ParseUserField(s string) (UserField, error) {
	return Users.ParseField(s)
}

// Users is the User schema.
var Users = record.MustSchema("user",
	[]record.Column[UserField]{
		{Name: UserFirstName, Kind: value.KindString},
		{Name: UserLastName, Kind: value.KindString},
		{Name: UserEmail, Kind: value.KindString},
		{Name: UserBannerID, Kind: value.KindInteger},
		{Name: UserGPA, Kind: value.KindFloat},
		{Name: UserActive, Kind: value.KindBoolean},
	},
	func(u User) []value.Value {
		return []value.Value{
			value.String(u.FirstName),
			value.String(u.LastName),
			value.String(u.Email),
			value.Integer(u.BannerID),
			value.Float(u.GPA),
			value.Boolean(u.Active),
		}
	},
	func(v []value.Value) (User, error) {
		// Kinds are checked by the schema before decode runs.
		first, _ := v[0].AsString()
		last, _ := v[1].AsString()
		email, _ := v[2].AsString()
		banner, _ := v[3].AsInt()
		gpa, _ := v[4].AsFloat()
		active, _ := v[5].AsBool()
		return User{
			FirstName: first,
			LastName:  last,
			Email:     email,
			BannerID:  banner,
			GPA:       gpa,
			Active:    active,
		}, nil
	},
)
