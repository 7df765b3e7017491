package questions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pavelanni/quiz/internal/model"
	"github.com/pavelanni/quiz/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{"array", `[{"number":4,"text":"Q","choices":["a","b"],"correct":1}]`, 1, false},
		{"missing numbers", `[{"text":"Q1","choices":["a","b"]},{"text":"Q2","choices":["a","b"]}]`, 2, false},
		{"export document", `{"title":"t","questions":[{"number":1,"text":"Q","choices":["a","b"],"correct":0}]}`, 1, false},
		{"empty array", `[]`, 0, true},
		{"not json", `hello`, 0, true},
		{"one choice", `[{"text":"Q","choices":["a"]}]`, 0, true},
		{"correct out of range", `[{"text":"Q","choices":["a","b"],"correct":2}]`, 0, true},
		{"no text", `[{"choices":["a","b"]}]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(qs) != tt.wantCount {
				t.Errorf("Parse() returned %d questions, want %d", len(qs), tt.wantCount)
			}
		})
	}
}

func TestParseAssignsPositionNumbers(t *testing.T) {
	qs, err := Parse([]byte(`[{"text":"Q1","choices":["a","b"]},{"number":7,"text":"Q2","choices":["a","b"]},{"text":"Q3","choices":["a","b"]}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []int{1, 7, 3}
	for i, w := range want {
		if qs[i].Number != w {
			t.Errorf("question %d number = %d, want %d", i, qs[i].Number, w)
		}
	}
}

func TestParseValidationError(t *testing.T) {
	_, err := Parse([]byte(`[{"text":"Q","choices":["a","b"],"correct":5}]`))
	if !errors.Is(err, model.ErrInvalidQuestion) {
		t.Errorf("Parse() error = %v, want ErrInvalidQuestion", err)
	}
}

func TestDefault(t *testing.T) {
	qs := Default()
	if len(qs) != 10 {
		t.Fatalf("expected 10 default questions, got %d", len(qs))
	}
	if qs[0].CorrectAnswer() != "France" {
		t.Errorf("question 1 answer = %q, want France", qs[0].CorrectAnswer())
	}
	for i, q := range qs {
		if q.Number != i+1 {
			t.Errorf("question %d has number %d", i, q.Number)
		}
	}
}

func TestImportIdempotent(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.json", `[{"text":"Q1","choices":["a","b"]},{"text":"Q2","choices":["a","b"],"correct":1}]`)

	n, err := Import(s, []string{path}, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("first import count = %d, want 2", n)
	}

	n, err = Import(s, []string{path}, false)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if n != 0 {
		t.Errorf("second import count = %d, want 0", n)
	}
	count, _ := s.QuestionCount()
	if count != 2 {
		t.Errorf("bank has %d questions, want 2", count)
	}
}

func TestImportChangedFile(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.json", `[{"text":"Q1","choices":["a","b"]}]`)
	if _, err := Import(s, []string{path}, false); err != nil {
		t.Fatalf("Import: %v", err)
	}

	writeFile(t, dir, "q.json", `[{"text":"Q1","choices":["a","b"]},{"text":"Q2","choices":["a","b"]},{"text":"Q3","choices":["a","b"]}]`)
	n, err := Import(s, []string{path}, false)
	if err != nil {
		t.Fatalf("Import changed: %v", err)
	}
	if n != 0 {
		t.Errorf("changed file imported %d questions without replace", n)
	}

	n, err = Import(s, []string{path}, true)
	if err != nil {
		t.Fatalf("Import replace: %v", err)
	}
	if n != 3 {
		t.Errorf("replace import count = %d, want 3", n)
	}
	count, _ := s.QuestionCount()
	if count != 3 {
		t.Errorf("bank has %d questions after replace, want 3", count)
	}
}

func TestImportInvalidFile(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `[{"text":"Q1","choices":["a"]}]`)

	if _, err := Import(s, []string{path}, false); err == nil {
		t.Fatal("expected error for invalid file")
	}
	hash, _ := s.GetImportedFileHash(path)
	if hash != "" {
		t.Error("invalid file recorded as imported")
	}
	if _, err := Import(s, []string{filepath.Join(dir, "missing.json")}, false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSeedAndLoad(t *testing.T) {
	s := newTestStore(t)

	if _, err := Load(s); !errors.Is(err, ErrEmptyBank) {
		t.Fatalf("Load() on empty bank error = %v, want ErrEmptyBank", err)
	}

	if err := Seed(s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(s); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	qs, err := Load(s)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(qs) != 10 {
		t.Errorf("loaded %d questions, want 10", len(qs))
	}
}

func loadTexts(t *testing.T, s *store.Store) []string {
	t.Helper()
	qs, err := Load(s)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var texts []string
	for _, q := range qs {
		texts = append(texts, q.Text)
	}
	return texts
}

func TestImportKeepsFileOrder(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"number":1,"text":"A1","choices":["x","y"]},{"number":2,"text":"A2","choices":["x","y"]}]`)
	b := writeFile(t, dir, "b.json", `[{"number":1,"text":"B1","choices":["x","y"]},{"number":2,"text":"B2","choices":["x","y"]}]`)

	if _, err := Import(s, []string{a, b}, false); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got := loadTexts(t, s)
	want := []string{"A1", "A2", "B1", "B2"}
	if len(got) != len(want) {
		t.Fatalf("loaded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestImportReplacesSeededBank(t *testing.T) {
	s := newTestStore(t)
	if err := Seed(s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	path := writeFile(t, t.TempDir(), "mine.json", `[{"text":"Mine","choices":["x","y"]}]`)

	n, err := Import(s, []string{path}, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("import count = %d, want 1", n)
	}
	if got := loadTexts(t, s); len(got) != 1 || got[0] != "Mine" {
		t.Errorf("bank after import into seeded bank = %v", got)
	}
	if seeded, _ := s.Seeded(); seeded {
		t.Error("bank still marked as seeded")
	}

	// A bank with user questions is not seeded again.
	if err := Seed(s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if count, _ := s.QuestionCount(); count != 1 {
		t.Errorf("bank has %d questions after Seed, want 1", count)
	}
}

func TestReplaceWithInvalidFileKeepsBank(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[{"text":"Q1","choices":["a","b"]},{"text":"Q2","choices":["a","b"]}]`)
	bad := writeFile(t, dir, "bad.json", `[{"text":"Q1","choices":["a"]}]`)

	if _, err := Import(s, []string{good}, false); err != nil {
		t.Fatalf("Import: %v", err)
	}
	goodHash, _ := s.GetImportedFileHash(good)

	if _, err := Import(s, []string{good, bad}, true); err == nil {
		t.Fatal("expected error for invalid file")
	}
	if count, _ := s.QuestionCount(); count != 2 {
		t.Errorf("bank has %d questions after failed replace, want 2", count)
	}
	if hash, _ := s.GetImportedFileHash(good); hash != goodHash || hash == "" {
		t.Errorf("import record for good file = %q, want %q", hash, goodHash)
	}
	if hash, _ := s.GetImportedFileHash(bad); hash != "" {
		t.Error("invalid file recorded as imported")
	}
}
