package questionbank

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quizpin-service/internal/domain"
)

type countingLoader struct {
	catalogs map[string]Catalog
	loads    int
}

func (l *countingLoader) LoadCatalog(_ context.Context, language string) (Catalog, error) {
	l.loads++
	if catalog, ok := l.catalogs[language]; ok {
		return catalog, nil
	}
	return nil, ErrCatalogNotFound
}

func sampleCatalog() Catalog {
	return Catalog{
		domain.DifficultyEasy: {
			{Text: "2+2?", Answer: "4", Difficulty: domain.DifficultyEasy, TimerSeconds: 30, BasePoints: 100},
		},
		domain.DifficultyHard: {
			{Text: "sqrt(144)?", Answer: "12", Difficulty: domain.DifficultyHard, TimerSeconds: 45, BasePoints: 200},
		},
		domain.DifficultyMedium: {
			{Text: "3*7?", Answer: "21", Difficulty: domain.DifficultyMedium, TimerSeconds: 30, BasePoints: 150},
		},
	}
}

func TestLoadFlattensTiersInOrder(t *testing.T) {
	loader := &countingLoader{catalogs: map[string]Catalog{"de": sampleCatalog()}}
	bank := NewBank(loader, time.Minute)

	questions, err := bank.Load(context.Background(), "de")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	wantOrder := []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
	for i, want := range wantOrder {
		if questions[i].Difficulty != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, questions[i].Difficulty)
		}
	}
}

func TestLoadCachesPerLanguage(t *testing.T) {
	loader := &countingLoader{catalogs: map[string]Catalog{"de": sampleCatalog()}}
	bank := NewBank(loader, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := bank.Load(context.Background(), "de"); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if loader.loads != 1 {
		t.Fatalf("expected a single loader hit, got %d", loader.loads)
	}

	bank.Invalidate("de")
	if _, err := bank.Load(context.Background(), "de"); err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if loader.loads != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", loader.loads)
	}
}

func TestLoadUnknownLanguageReturnsEmpty(t *testing.T) {
	bank := NewBank(&countingLoader{}, time.Minute)

	questions, err := bank.Load(context.Background(), "xx")
	if err != nil {
		t.Fatalf("unknown language must not error, got %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected empty question list, got %d", len(questions))
	}
}

func TestByDifficultyFilters(t *testing.T) {
	loader := &countingLoader{catalogs: map[string]Catalog{"de": sampleCatalog()}}
	bank := NewBank(loader, time.Minute)

	hard, err := bank.ByDifficulty(context.Background(), "de", domain.DifficultyHard)
	if err != nil {
		t.Fatalf("by difficulty: %v", err)
	}
	if len(hard) != 1 || hard[0].Answer != "12" {
		t.Fatalf("expected one hard question, got %+v", hard)
	}
}

func TestFileLoaderReadsCatalogFiles(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal(sampleCatalog())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "questions_de.json"), raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewFileLoader(dir)
	catalog, err := loader.LoadCatalog(context.Background(), "de")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(catalog[domain.DifficultyEasy]) != 1 {
		t.Fatalf("expected easy tier in catalog, got %+v", catalog)
	}

	if _, err := loader.LoadCatalog(context.Background(), "fr"); err != ErrCatalogNotFound {
		t.Fatalf("expected ErrCatalogNotFound for missing file, got %v", err)
	}
	if _, err := loader.LoadCatalog(context.Background(), "../etc/passwd"); err != ErrCatalogNotFound {
		t.Fatalf("expected ErrCatalogNotFound for bad language code, got %v", err)
	}
}
