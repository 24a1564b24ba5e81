package collection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/othala/internal/apperr"
)

func tempCollection(t *testing.T, fileext string) *Collection {
	t.Helper()
	col, err := Open(t.TempDir(), fileext, "utf-8")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return col
}

func TestCreateGetRoundTrip(t *testing.T) {
	col := tempCollection(t, ".txt")
	href, etag, err := col.Create("note-1", Item{Raw: "some text\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if href != "note-1.txt" {
		t.Errorf("href = %q, want %q", href, "note-1.txt")
	}
	item, gotEtag, err := col.Get(href)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Raw != "some text\n" {
		t.Errorf("raw = %q", item.Raw)
	}
	if gotEtag != etag {
		t.Errorf("etag = %q, want %q", gotEtag, etag)
	}
}

// Full lifecycle: create with a safe hint, update under the fresh etag,
// reject the stale one, delete, and observe NotFound afterwards.
func TestItemLifecycle(t *testing.T) {
	col := tempCollection(t, ".ics")

	href, etag, err := col.Create("evt-1", Item{Raw: "BEGIN:VEVENT\nEND:VEVENT\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if href != "evt-1.ics" {
		t.Errorf("href = %q, want %q", href, "evt-1.ics")
	}
	if etag == "" {
		t.Fatal("empty etag")
	}

	time.Sleep(10 * time.Millisecond)
	newEtag, err := col.Update(href, Item{Raw: "BEGIN:VEVENT\nSUMMARY:x\nEND:VEVENT\n"}, etag)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if newEtag == etag {
		t.Error("etag did not change after update")
	}

	if _, err := col.Update(href, Item{Raw: "stale"}, etag); !errors.Is(err, apperr.ErrEtagMismatch) {
		t.Fatalf("stale update err = %v, want EtagMismatch", err)
	}

	if err := col.Delete(href, newEtag); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := col.Get(href); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want NotFound", err)
	}
}

func TestCreateUnsafeHintGetsRandomHref(t *testing.T) {
	col := tempCollection(t, ".txt")
	cases := []string{"", "a/b", "..\\up", "white space", "umläut", "semi;colon"}
	for _, hint := range cases {
		href, _, err := col.Create(hint, Item{Raw: "x"})
		if err != nil {
			t.Fatalf("Create(%q): %v", hint, err)
		}
		if href == hint+".txt" {
			t.Errorf("unsafe hint %q used verbatim", hint)
		}
		ident := strings.TrimSuffix(href, ".txt")
		if len(ident) != 32 {
			t.Errorf("random ident = %q, want 32 hex chars", ident)
		}
	}
}

func TestCreateCollidingHint(t *testing.T) {
	col := tempCollection(t, ".txt")
	if _, _, err := col.Create("same", Item{Raw: "one"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, _, err := col.Create("same", Item{Raw: "two"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want AlreadyExists", err)
	}
	item, _, err := col.Get("same.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Raw != "one" {
		t.Errorf("collision clobbered the original: %q", item.Raw)
	}
}

func TestCreateNameTooLongFallsBackOnce(t *testing.T) {
	col := tempCollection(t, ".txt")
	hint := strings.Repeat("x", 300) // safe chars, but over NAME_MAX
	href, etag, err := col.Create(hint, Item{Raw: "content"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.HasPrefix(href, hint) {
		t.Errorf("oversized hint used verbatim")
	}
	if len(strings.TrimSuffix(href, ".txt")) != 32 {
		t.Errorf("fallback href = %q, want random ident", href)
	}
	item, _, err := col.Get(href)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Raw != "content" || etag == "" {
		t.Errorf("fallback item = %+v etag = %q", item, etag)
	}
}

func TestListExcludesMetaDir(t *testing.T) {
	col := tempCollection(t, ".txt")
	if _, _, err := col.Create("a", Item{Raw: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := col.Create("b", Item{Raw: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := col.SetMeta(MetaDisplayName, "My Collection"); err != nil {
		t.Fatal(err)
	}

	refs, err := col.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(refs), refs)
	}
	for _, ref := range refs {
		if ref.Href == MetaDirName || ref.Etag == "" {
			t.Errorf("bad ref %+v", ref)
		}
	}
}

func TestMetaRoundTripAndNormalization(t *testing.T) {
	col := tempCollection(t, ".txt")

	if _, ok, err := col.GetMeta("displayname"); err != nil || ok {
		t.Fatalf("unset key: ok = %v, err = %v, want absent with no error", ok, err)
	}

	if err := col.SetMeta("displayname", "  Tasks  \n"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	value, ok, err := col.GetMeta("displayname")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if !ok || value != "Tasks" {
		t.Errorf("value = %q ok = %v, want trimmed %q", value, ok, "Tasks")
	}

	// Whitespace-only values read as absent.
	if err := col.SetMeta("displayname", "   "); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if _, ok, err := col.GetMeta("displayname"); err != nil || ok {
		t.Errorf("blank value: ok = %v, err = %v, want absent", ok, err)
	}
}

func TestMetaLastWriterWins(t *testing.T) {
	col := tempCollection(t, ".txt")
	if err := col.SetMeta("color", "#FF0000"); err != nil {
		t.Fatal(err)
	}
	if err := col.SetMeta("color", "#00FF00"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := col.GetMeta("color")
	if err != nil || !ok {
		t.Fatalf("GetMeta: ok = %v, err = %v", ok, err)
	}
	if value != "#00FF00" {
		t.Errorf("value = %q", value)
	}
}

func TestMetaLivesInReservedDir(t *testing.T) {
	col := tempCollection(t, ".txt")
	if err := col.SetMeta("displayname", "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(col.Path(), MetaDirName, "displayname")); err != nil {
		t.Errorf("metadata file not in %s: %v", MetaDirName, err)
	}
	// An item named like a metadata key stays independent.
	href, _, err := col.Create("displayname", Item{Raw: "item content"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if href != "displayname.txt" {
		t.Fatalf("href = %q", href)
	}
	value, ok, _ := col.GetMeta("displayname")
	if !ok || value != "X" {
		t.Errorf("metadata clobbered by item: %q ok=%v", value, ok)
	}
}

type recordingHook struct {
	paths []string
}

func (r *recordingHook) Notify(path string) { r.paths = append(r.paths, path) }

func TestHookRunsOnCreateAndUpdate(t *testing.T) {
	rec := &recordingHook{}
	col, err := Open(t.TempDir(), ".txt", "utf-8", WithHook(rec))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	href, etag, err := col.Create("a", Item{Raw: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := col.Update(href, Item{Raw: "v2"}, etag); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := filepath.Join(col.Path(), href)
	if len(rec.paths) != 2 || rec.paths[0] != want || rec.paths[1] != want {
		t.Errorf("hook paths = %v, want twice %q", rec.paths, want)
	}

	// Failed writes never reach the hook.
	if _, _, err := col.Create("a", Item{Raw: "again"}); err == nil {
		t.Fatal("expected AlreadyExists")
	}
	if len(rec.paths) != 2 {
		t.Errorf("hook ran on failed create: %v", rec.paths)
	}
}
