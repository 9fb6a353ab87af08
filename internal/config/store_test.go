package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStoreConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "browsersettings.yaml")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(SectionBookmarks, fmt.Sprintf("k%d", i), "v")
			errs <- s.Save()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() after saves error = %v", err)
	}
	for i := 0; i < writers; i++ {
		if !reopened.HasValue(SectionBookmarks, fmt.Sprintf("k%d", i)) {
			t.Fatalf("key k%d missing after concurrent saves", i)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries; want only the settings file", len(entries))
	}
}
