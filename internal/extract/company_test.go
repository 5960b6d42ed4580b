package extract

import "testing"

func TestCompany(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		from    string
		subject string
		body    string
		want    string
	}{
		{
			name: "sender domain label",
			from: "jobs@meta.com",
			want: "Meta",
		},
		{
			name: "sender domain inside display name address",
			from: "Initech Careers <noreply@initech.com>",
			want: "Initech",
		},
		{
			name:    "capitalized subject word when sender has no address",
			from:    "Placement Cell",
			subject: "internship at Globex this winter",
			want:    "Globex",
		},
		{
			name:    "body fallback skips salutations",
			from:    "",
			subject: "re: next steps",
			body:    "Dear candidate, Initech would like to invite you onsite.",
			want:    "Initech",
		},
		{
			name:    "nothing company shaped",
			from:    "",
			subject: "hello there",
			body:    "just checking in about the thing we discussed",
			want:    "Unknown Company",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Company(tc.from, tc.subject, tc.body); got != tc.want {
				t.Fatalf("Company = %q, want %q", got, tc.want)
			}
		})
	}
}
