package domain

import "testing"

func TestIntegrationDescriptorConfigured(t *testing.T) {
	t.Parallel()

	d := IntegrationDescriptor{
		Name: "github",
		RequiredKeys: []KeyPresence{
			NewKeyPresence("GITHUB_USERNAME", "octocat"),
			NewKeyPresence("GITHUB_TOKEN", "  "),
		},
	}

	if d.Configured() {
		t.Fatal("Configured() = true, want false with blank token")
	}
	missing := d.MissingKeys()
	if len(missing) != 1 || missing[0] != "GITHUB_TOKEN" {
		t.Fatalf("MissingKeys() = %v, want [GITHUB_TOKEN]", missing)
	}

	d.RequiredKeys[1] = NewKeyPresence("GITHUB_TOKEN", "ghp_x")
	if !d.Configured() {
		t.Fatal("Configured() = false, want true")
	}
}
