package detection

// Field is one of the canonical contact attributes a source column can map to.
type Field string

const (
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldOrganization Field = "organization"
	FieldRole         Field = "role"
	FieldLocation     Field = "location"
	FieldNotes        Field = "notes"
)

// Fields lists every canonical field in scan order. Ties between fields are
// broken in favour of the one that appears first here.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldOrganization,
	FieldRole,
	FieldLocation,
	FieldNotes,
}

// ParseField returns the canonical field named s.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

func (f Field) String() string {
	return string(f)
}
