package detection

// Patterns maps each canonical field to the lowercase header spellings that
// identify it. Alias order does not affect scoring.
type Patterns map[Field][]string

// DefaultPatterns is the built-in alias table. Treat it as append-only: new
// spellings seen in real imports go at the end of the relevant list.
var DefaultPatterns = Patterns{
	FieldName: {
		"name", "full name", "full_name", "fullname",
		"contact name", "contact_name", "display name", "display_name",
		"first name", "first_name", "firstname",
		"last name", "last_name", "lastname",
		"member name", "person",
	},
	FieldEmail: {
		"email", "e-mail", "email address", "email_address", "emailaddress",
		"e-mail address", "mail", "email addr",
	},
	FieldPhone: {
		"phone", "phone number", "phone_number", "phonenumber",
		"telephone", "tel", "mobile", "mobile number", "mobile phone",
		"cell", "cell phone", "work phone", "home phone",
	},
	FieldOrganization: {
		"organization", "organisation", "org", "company",
		"company name", "company_name", "organization name", "organization_name",
		"employer", "business", "institution", "affiliation",
	},
	FieldRole: {
		"role", "title", "job title", "job_title", "jobtitle",
		"position", "occupation", "job", "designation",
	},
	FieldLocation: {
		"location", "address", "city", "country", "state", "region",
		"mailing address", "street address", "home address", "street",
		"zip", "postal code",
	},
	FieldNotes: {
		"notes", "note", "comments", "comment", "description",
		"bio", "about", "remarks", "details",
	},
}
