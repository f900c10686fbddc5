package sheets

import (
	"encoding/base64"
	"testing"
)

func TestNormalizeCredentials(t *testing.T) {
	const creds = `{"type":"service_account","client_email":"bot@example.iam.gserviceaccount.com"}`

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n", ""},
		{"plain json", creds, creds},
		{"json with padding", "  " + creds + "  ", creds},
		{"base64", base64.StdEncoding.EncodeToString([]byte(creds)), creds},
		{"base64 of padded json", base64.StdEncoding.EncodeToString([]byte("\n" + creds + "\n")), creds},
		{"not json not base64", "some-opaque-value", "some-opaque-value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCredentials(tc.in); got != tc.want {
				t.Fatalf("NormalizeCredentials(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
