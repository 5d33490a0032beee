package file_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/blox/internal/adapters/file"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(text string) domain.Document {
	return domain.Document{
		domain.RootID: {Type: domain.TypeEmailLayout, Data: domain.BlockData{Props: map[string]any{"childrenIds": []any{"a"}}}},
		"a":           {Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": text}}},
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"email.json", "email.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			src := file.New(path)

			require.NoError(t, src.Save(doc("hello")))
			got, err := src.Load()
			require.NoError(t, err)
			assert.Equal(t, "hello", got["a"].Data.Props["text"])

			require.NoError(t, src.Save(doc("again")), "overwrite")
			got, err = src.Load()
			require.NoError(t, err)
			assert.Equal(t, "again", got["a"].Data.Props["text"])

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files left behind")
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := file.New(filepath.Join(t.TempDir(), "nope.json")).Load()
	assert.Error(t, err)
}

type recorder struct {
	mu   sync.Mutex
	docs []domain.Document
}

func (r *recorder) LoadDocument(d domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, d)
	return nil
}

func (r *recorder) last() (domain.Document, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.docs) == 0 {
		return nil, 0
	}
	return r.docs[len(r.docs)-1], len(r.docs)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email.json")
	src := file.New(path, file.WithDebounce(10*time.Millisecond))
	require.NoError(t, src.Save(doc("v1")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx, rec) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"root":{"type":"EmailLayout","data":{"props":{"childrenIds":[]}}},"b":{"type":"Spacer","data":{}}}`), 0o644))

	require.Eventually(t, func() bool {
		d, _ := rec.last()
		return d != nil && d.Has("b")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_SkipsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email.json")
	src := file.New(path, file.WithDebounce(10*time.Millisecond))
	require.NoError(t, src.Save(doc("v1")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go func() { _ = src.Watch(ctx, rec) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	time.Sleep(150 * time.Millisecond)

	_, n := rec.last()
	assert.Zero(t, n)
}
