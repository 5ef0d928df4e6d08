package repository

import "testing"

func TestFactoryReturnsSingletonRepositories(t *testing.T) {
	f := NewFactory(nil)

	first := f.GetRepositories()
	second := f.GetRepositories()
	if first != second {
		t.Fatalf("expected GetRepositories to return the same instance")
	}

	if f.GetProfileRepository() == nil {
		t.Fatalf("expected a profile repository")
	}
	if f.GetProfileRepository() != first.Profile {
		t.Fatalf("expected GetProfileRepository to return the bundled instance")
	}
}

func TestFactoriesAreIndependent(t *testing.T) {
	a := NewFactory(nil)
	b := NewFactory(nil)

	if a.GetRepositories() == b.GetRepositories() {
		t.Fatalf("expected separate factories to own separate repository sets")
	}
}
