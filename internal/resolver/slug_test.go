package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trellis/internal/object"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Fix Login Flow", "fix-login-flow"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Héllo Wörld", "hello-world"},
		{"Crème Brûlée", "creme-brulee"},
		{"C++ & Rust!!", "c-rust"},
		{"already-slugged", "already-slugged"},
		{"UPPER case 123", "upper-case-123"},
		{"___", ""},
		{"!!!", ""},
		{"a_b", "a-b"},
		{strings.Repeat("x", 40), strings.Repeat("x", 32)},
		{"word " + strings.Repeat("y", 40), "word-" + strings.Repeat("y", 27)},
	}
	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSlugifyTruncationNeverEndsWithHyphen(t *testing.T) {
	// 32nd character lands exactly on a separator.
	title := strings.Repeat("a", 31) + " tail"
	got := Slugify(title)
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slugify(%q) = %q ends with hyphen", title, got)
	}
	if len(got) > 32 {
		t.Errorf("slug %q exceeds 32 chars", got)
	}
}

// touchTask materializes an open standalone task file so GenerateID sees a
// collision for the id.
func touchTask(t *testing.T, root, id string) {
	t.Helper()
	dir := filepath.Join(root, TasksOpenDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "T-"+id+".md"), []byte("---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateIDDeterministic(t *testing.T) {
	root := t.TempDir()
	r := New(root)
	first, err := r.GenerateID(object.KindTask, "Fix the Login")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.GenerateID(object.KindTask, "Fix the Login")
	if err != nil {
		t.Fatal(err)
	}
	if first != second || first != "fix-the-login" {
		t.Errorf("ids = %q, %q", first, second)
	}
}

func TestGenerateIDEmptySlug(t *testing.T) {
	r := New(t.TempDir())
	_, err := r.GenerateID(object.KindTask, "!!!")
	if !errors.Is(err, ErrEmptySlug) {
		t.Errorf("err = %v, want ErrEmptySlug", err)
	}
}

func TestGenerateIDCollisionMonotonic(t *testing.T) {
	root := t.TempDir()
	r := New(root)

	touchTask(t, root, "deploy")
	id, err := r.GenerateID(object.KindTask, "Deploy")
	if err != nil {
		t.Fatal(err)
	}
	if id != "deploy-1" {
		t.Errorf("first collision id = %q, want deploy-1", id)
	}

	touchTask(t, root, "deploy-1")
	touchTask(t, root, "deploy-2")
	id, err = r.GenerateID(object.KindTask, "Deploy")
	if err != nil {
		t.Fatal(err)
	}
	if id != "deploy-3" {
		t.Errorf("id = %q, want deploy-3", id)
	}
}

func TestGenerateIDSuffixRetruncatesBase(t *testing.T) {
	root := t.TempDir()
	r := New(root)
	base := strings.Repeat("z", 32)
	touchTask(t, root, base)
	id, err := r.GenerateID(object.KindTask, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(id) > 32 {
		t.Errorf("suffixed id %q exceeds 32 chars", id)
	}
	if want := strings.Repeat("z", 30) + "-1"; id != want {
		t.Errorf("id = %q, want %q", id, want)
	}
}

func TestGenerateIDExhaustsSuffixes(t *testing.T) {
	root := t.TempDir()
	r := New(root)
	touchTask(t, root, "hot")
	for n := 1; n <= 100; n++ {
		touchTask(t, root, fmt.Sprintf("hot-%d", n))
	}
	_, err := r.GenerateID(object.KindTask, "Hot")
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestGenerateIDScopedToKind(t *testing.T) {
	root := t.TempDir()
	r := New(root)
	// A task named "site" does not collide with a new project named "site".
	touchTask(t, root, "site")
	id, err := r.GenerateID(object.KindProject, "Site")
	if err != nil {
		t.Fatal(err)
	}
	if id != "site" {
		t.Errorf("id = %q, want site", id)
	}
}
