package types

// ID types give each integer key a domain meaning so that a card id cannot be
// passed where a column id is expected.

// OrgID identifies an organization (tenant)
type OrgID int

// BoardID identifies a board within an organization
type BoardID int

// ColumnID identifies a column within a board
type ColumnID int

// CardID identifies a card within a column
type CardID int

// LabelID identifies a label within a board
type LabelID int

// UserID identifies a principal. It is the subject claim of the access token
// or, on the command line, the OS username.
type UserID string

func (id OrgID) ToInt() int {
	return int(id)
}

func (id BoardID) ToInt() int {
	return int(id)
}

func (id ColumnID) ToInt() int {
	return int(id)
}

func (id CardID) ToInt() int {
	return int(id)
}

func (id LabelID) ToInt() int {
	return int(id)
}

func (id UserID) String() string {
	return string(id)
}
