package naming_test

import (
	"os"
	"path/filepath"
	"testing"

	"livearchive/internal/naming"
)

var testTitles = naming.Titles{
	PrimaryTitle:   "Primary",
	PrimaryTag:     "Primary Tag",
	SecondaryTitle: "Secondary",
	SecondaryTag:   "Secondary Tag",
}

func newResolver(t *testing.T) (*naming.Resolver, string) {
	t.Helper()
	root := t.TempDir()
	r, err := naming.NewResolver(root, "mp4", testTitles)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r, root
}

func mustParse(t *testing.T, name string) naming.CaptureTime {
	t.Helper()
	ct, err := naming.ParseCaptureTime(name, "mp4")
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return ct
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveEmptyTreeAssignsPrimary(t *testing.T) {
	r, root := newResolver(t)
	ct := mustParse(t, "2024-12-27_18-42-36.mp4")

	slot, err := r.Resolve(ct)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantPath := filepath.Join(root, "2024", "12-December", "Primary | December 27 2024.mp4")
	if slot.Path() != wantPath {
		t.Fatalf("path = %q, want %q", slot.Path(), wantPath)
	}
	if slot.Category != naming.Primary || slot.Suffix != 0 {
		t.Fatalf("category/suffix = %v/%d, want primary/0", slot.Category, slot.Suffix)
	}
	if slot.Tag != "Primary Tag" {
		t.Fatalf("tag = %q", slot.Tag)
	}
	wantSidecar := filepath.Join(root, "2024", "12-December", "Primary | December 27 2024.nfo")
	if slot.SidecarPath() != wantSidecar {
		t.Fatalf("sidecar = %q, want %q", slot.SidecarPath(), wantSidecar)
	}
	if _, err := os.Stat(slot.Dir); !os.IsNotExist(err) {
		t.Fatalf("Resolve must not create directories, stat err=%v", err)
	}
}

func TestResolveFallsBackToSecondaryThenSuffixes(t *testing.T) {
	r, _ := newResolver(t)
	ct := mustParse(t, "2024-12-27_18-42-36.mp4")

	want := []struct {
		category naming.Category
		suffix   int
		base     string
	}{
		{naming.Primary, 0, "Primary | December 27 2024"},
		{naming.Secondary, 0, "Secondary | December 27 2024"},
		{naming.Secondary, 1, "Secondary | December 27 2024 (1)"},
		{naming.Secondary, 2, "Secondary | December 27 2024 (2)"},
		{naming.Secondary, 3, "Secondary | December 27 2024 (3)"},
	}
	for i, w := range want {
		slot, err := r.Resolve(ct)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if slot.Category != w.category || slot.Suffix != w.suffix || slot.Base != w.base {
			t.Fatalf("resolve %d = (%v, %d, %q), want (%v, %d, %q)", i, slot.Category, slot.Suffix, slot.Base, w.category, w.suffix, w.base)
		}
		touch(t, slot.Path())
	}
}

func TestResolveFillsSuffixGaps(t *testing.T) {
	r, root := newResolver(t)
	ct := mustParse(t, "2024-03-09_11-00-00.mp4")
	dir := filepath.Join(root, "2024", "03-March")
	touch(t, filepath.Join(dir, "Primary | March 09 2024.mp4"))
	touch(t, filepath.Join(dir, "Secondary | March 09 2024.mp4"))
	touch(t, filepath.Join(dir, "Secondary | March 09 2024 (2).mp4"))

	slot, err := r.Resolve(ct)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if slot.Suffix != 1 {
		t.Fatalf("suffix = %d, want 1", slot.Suffix)
	}
	if slot.DisplayTitle != "Secondary | March 9 2024 (1)" {
		t.Fatalf("display title = %q", slot.DisplayTitle)
	}
}

func TestResolveSecondaryWhenOnlyPrimaryExists(t *testing.T) {
	r, root := newResolver(t)
	ct := mustParse(t, "2024-12-27_18-42-36.mp4")
	touch(t, filepath.Join(root, "2024", "12-December", "Primary | December 27 2024.mp4"))

	slot, err := r.Resolve(ct)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if slot.Category != naming.Secondary || slot.Suffix != 0 {
		t.Fatalf("got %v/%d, want secondary/0", slot.Category, slot.Suffix)
	}
}

func TestResolveIgnoresOtherExtensionsAndDates(t *testing.T) {
	r, root := newResolver(t)
	ct := mustParse(t, "2024-12-27_18-42-36.mp4")
	dir := filepath.Join(root, "2024", "12-December")
	touch(t, filepath.Join(dir, "Primary | December 27 2024.nfo"))
	touch(t, filepath.Join(dir, "Primary | December 26 2024.mp4"))

	slot, err := r.Resolve(ct)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if slot.Category != naming.Primary {
		t.Fatalf("category = %v, want primary", slot.Category)
	}
}

func TestArchived(t *testing.T) {
	r, root := newResolver(t)
	ct := mustParse(t, "2024-12-27_18-42-36.mp4")

	archived, err := r.Archived(ct)
	if err != nil || archived {
		t.Fatalf("Archived on empty tree = %v, %v", archived, err)
	}

	touch(t, filepath.Join(root, "2024", "12-December", "Secondary | December 27 2024.mp4"))
	archived, err = r.Archived(ct)
	if err != nil || !archived {
		t.Fatalf("Archived with secondary output = %v, %v", archived, err)
	}
}

func TestNewResolverValidatesTitles(t *testing.T) {
	if _, err := naming.NewResolver(t.TempDir(), "mp4", naming.Titles{PrimaryTitle: "Same", SecondaryTitle: "Same"}); err == nil {
		t.Fatal("expected error for identical titles")
	}
	if _, err := naming.NewResolver(t.TempDir(), "mp4", naming.Titles{PrimaryTitle: "A"}); err == nil {
		t.Fatal("expected error for missing secondary title")
	}
	if _, err := naming.NewResolver("", "mp4", testTitles); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestNewResolverSanitizesTitlesAndDefaultsTags(t *testing.T) {
	r, root := func() (*naming.Resolver, string) {
		root := t.TempDir()
		r, err := naming.NewResolver(root, ".mkv", naming.Titles{PrimaryTitle: "AM/PM", SecondaryTitle: "Evening"})
		if err != nil {
			t.Fatalf("NewResolver: %v", err)
		}
		return r, root
	}()
	slot, err := r.Resolve(mustParse(t, "2024-12-27_18-42-36.mp4"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(root, "2024", "12-December", "AM-PM | December 27 2024.mkv")
	if slot.Path() != want {
		t.Fatalf("path = %q, want %q", slot.Path(), want)
	}
	if slot.Tag != "AM-PM" {
		t.Fatalf("tag = %q, want sanitized title fallback", slot.Tag)
	}
}
