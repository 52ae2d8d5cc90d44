package dataset

// Builtin returns a small labeled set of real-world header rows. It is what
// `eval run` scores when no dataset file is given.
func Builtin() []Case {
	return []Case{
		{
			ID:      "basic-exact",
			Headers: []string{"Full Name", "E-mail", "Phone Number"},
			Expected: []Label{
				{Index: 0, Field: "name"},
				{Index: 1, Field: "email"},
				{Index: 2, Field: "phone"},
			},
		},
		{
			ID:      "all-fields",
			Headers: []string{"Name", "Email", "Company", "Job Title", "City", "Notes"},
			Expected: []Label{
				{Index: 0, Field: "name"},
				{Index: 1, Field: "email"},
				{Index: 2, Field: "organization"},
				{Index: 3, Field: "role"},
				{Index: 4, Field: "location"},
				{Index: 5, Field: "notes"},
			},
		},
		{
			ID:      "split-name",
			Headers: []string{"First Name", "Last Name", "Email Address", "Mobile"},
			Expected: []Label{
				{Index: 0, Field: "name"},
				{Index: 2, Field: "email"},
				{Index: 3, Field: "phone"},
			},
		},
		{
			ID:       "contact-and-handle",
			Headers:  []string{"Contact", "Twitter Handle"},
			Expected: []Label{{Index: 0, Field: "name"}},
		},
		{
			ID:       "duplicate-name",
			Headers:  []string{"Name", "Full Name"},
			Expected: []Label{{Index: 0, Field: "name"}},
		},
		{
			ID:      "no-match",
			Headers: []string{"xyz123"},
		},
		{
			ID:      "british-spelling",
			Headers: []string{"Member Name", "Organisation", "Position", "Address", "Comments"},
			Expected: []Label{
				{Index: 0, Field: "name"},
				{Index: 1, Field: "organization"},
				{Index: 2, Field: "role"},
				{Index: 3, Field: "location"},
				{Index: 4, Field: "notes"},
			},
		},
		{
			ID:      "short-aliases",
			Headers: []string{"email", "Tel", "Employer", "Role", "Country", "Bio"},
			Expected: []Label{
				{Index: 0, Field: "email"},
				{Index: 1, Field: "phone"},
				{Index: 2, Field: "organization"},
				{Index: 3, Field: "role"},
				{Index: 4, Field: "location"},
				{Index: 5, Field: "notes"},
			},
		},
		{
			ID:      "crm-export",
			Headers: []string{"ID", "Name", "Email", "Signup Date"},
			Expected: []Label{
				{Index: 1, Field: "name"},
				{Index: 2, Field: "email"},
			},
		},
		{
			ID:       "duplicate-email",
			Headers:  []string{"Email", "Email"},
			Expected: []Label{{Index: 0, Field: "email"}},
		},
	}
}
