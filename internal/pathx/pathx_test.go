package pathx

import "testing"

func TestRuleFilePath(t *testing.T) {
	cases := map[string]string{
		"/plugins/foo.so":  "/plugins/foo.nxpt",
		"/plugins/foo":     "/plugins/foo.nxpt",
		"C:\\libs\\foo.dll": "C:\\libs\\foo.nxpt",
	}
	for in, want := range cases {
		if got := RuleFilePath(in); got != want {
			t.Errorf("RuleFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidationFilePath(t *testing.T) {
	if got := ValidationFilePath("/plugins/foo.so"); got != "/plugins/foo.nxpv" {
		t.Errorf("ValidationFilePath = %q", got)
	}
}

func TestIgnoreKey(t *testing.T) {
	cases := map[string]string{
		"/opt/app/plugins/sub/foo.so": "plugins/sub/foo.so",
		`C:\app\plugins\foo.dll`:      "plugins/foo.dll",
		"/opt/app/other/foo.so":       "/opt/app/other/foo.so",
	}
	for in, want := range cases {
		if got := IgnoreKey(in); got != want {
			t.Errorf("IgnoreKey(%q) = %q, want %q", in, got, want)
		}
	}
}
