package memory

import (
	"bytes"
	"context"
	"testing"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("id\n1\n")
	uri, err := store.PutObject(context.Background(), "stats/dataset.csv", "text/csv", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://stats/dataset.csv" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'X'
	obj, ok := store.Get("stats/dataset.csv")
	if !ok {
		t.Fatal("object not stored")
	}
	if string(obj.Data) != "id\n1\n" {
		t.Fatalf("expected stored copy to be immutable, got %q", obj.Data)
	}
	if obj.ContentType != "text/csv" {
		t.Fatalf("content type = %q", obj.ContentType)
	}
	if paths := store.Paths(); len(paths) != 1 || paths[0] != "stats/dataset.csv" {
		t.Fatalf("unexpected paths %v", paths)
	}
}
