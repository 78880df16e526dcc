package credentials

import "testing"

func TestConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		creds  Static
		key    string
		want   string
		wantOK bool
	}{
		{"present", Static{KeyOpenAI: "sk-test"}, KeyOpenAI, "sk-test", true},
		{"absent", Static{}, KeyOpenAI, "", false},
		{"empty", Static{KeyOpenAI: ""}, KeyOpenAI, "", false},
		{"placeholder", Static{KeyOpenAI: Placeholder}, KeyOpenAI, "", false},
		{"other key untouched", Static{KeyGoogle: "g-key"}, KeyGoogle, "g-key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Configured(tt.creds, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Configured(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Configured(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("KOMPOW_TEST_CRED", "abc")

	v, ok := Env{}.Lookup("KOMPOW_TEST_CRED")
	if !ok || v != "abc" {
		t.Errorf("Lookup = %q/%v, want abc/true", v, ok)
	}
	if _, ok := (Env{}).Lookup("KOMPOW_TEST_CRED_MISSING"); ok {
		t.Error("Lookup of unset var reported ok")
	}
}
