package version

import "testing"

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.Version == "" || info.GitCommit == "" || info.BuildDate == "" {
		t.Fatalf("expected non-empty version info")
	}
	if info.ComponentName != "irscout" {
		t.Fatalf("unexpected component %q", info.ComponentName)
	}
}

func TestGetShortCommit(t *testing.T) {
	old := GitCommit
	defer func() { GitCommit = old }()

	GitCommit = "abcdef123456"
	if GetShortCommit() != "abcdef1" {
		t.Fatalf("expected short commit")
	}
	GitCommit = "abc"
	if GetShortCommit() != "abc" {
		t.Fatalf("short hashes are returned as is")
	}
}

func TestString(t *testing.T) {
	old := GitCommit
	defer func() { GitCommit = old }()

	GitCommit = "abcdef123456"
	if got := String(); got != "irscout dev (abcdef1, built unknown)" {
		t.Fatalf("unexpected banner %q", got)
	}
}
