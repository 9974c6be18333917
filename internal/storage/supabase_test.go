package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeSupabaseStorage implements the subset of the Storage REST API used by SupabaseStore.
type fakeSupabaseStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	upserts   []string
	apiKeys   []string
	legacy404 bool
}

func newFakeSupabaseStorage() *fakeSupabaseStorage {
	return &fakeSupabaseStorage{objects: make(map[string][]byte)}
}

func (fake *fakeSupabaseStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	fake.apiKeys = append(fake.apiKeys, r.Header.Get("apikey"))
	const objectPrefix = "/storage/v1/object/"
	const listPrefix = "/storage/v1/object/list/"

	switch {
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, listPrefix):
		var request supabaseListRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		bucket := strings.TrimPrefix(r.URL.Path, listPrefix)
		folder := bucket + "/" + request.Prefix + "/"
		listed := make([]map[string]any, 0)
		for key := range fake.objects {
			if strings.HasPrefix(key, folder) {
				id := "id-" + key
				listed = append(listed, map[string]any{"name": strings.TrimPrefix(key, folder), "id": id})
			}
		}
		listed = append(listed, map[string]any{"name": "nested-folder", "id": nil})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listed)
	case strings.HasPrefix(r.URL.Path, objectPrefix):
		key := strings.TrimPrefix(r.URL.Path, objectPrefix)
		switch r.Method {
		case http.MethodPost:
			if r.Header.Get("x-upsert") != "true" {
				http.Error(w, `{"error":"Duplicate"}`, http.StatusConflict)
				return
			}
			body, _ := io.ReadAll(r.Body)
			fake.objects[key] = body
			fake.upserts = append(fake.upserts, key)
			_, _ = w.Write([]byte(`{"Key":"` + key + `"}`))
		case http.MethodGet:
			body, ok := fake.objects[key]
			if !ok {
				fake.writeNotFound(w)
				return
			}
			_, _ = w.Write(body)
		case http.MethodDelete:
			if _, ok := fake.objects[key]; !ok {
				fake.writeNotFound(w)
				return
			}
			delete(fake.objects, key)
			_, _ = w.Write([]byte(`[]`))
		}
	default:
		http.NotFound(w, r)
	}
}

func (fake *fakeSupabaseStorage) writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if fake.legacy404 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"message":"Object not found"}`))
}

func newSupabaseStoreForTest(t *testing.T, fake *fakeSupabaseStorage) *SupabaseStore {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewSupabaseStore(server.URL, "service-role-key", "patient-data", nil)
	if err != nil {
		t.Fatalf("NewSupabaseStore() unexpected error: %v", err)
	}
	return store
}

func TestSupabaseStoreUpsertAndDownload(t *testing.T) {
	fake := newFakeSupabaseStorage()
	store := newSupabaseStoreForTest(t, fake)
	ctx := context.Background()

	if err := store.Put(ctx, ProfileKey("google|42"), []byte(`{"name":"a"}`), ContentTypeJSON); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, ProfileKey("google|42"), []byte(`{"name":"b"}`), ContentTypeJSON); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(ctx, ProfileKey("google|42"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"name":"b"}` {
		t.Fatalf("expected upserted body, got %s", got)
	}
	if len(fake.upserts) != 2 || fake.upserts[0] != "patient-data/google|42/patient_profile.json" {
		t.Fatalf("unexpected upsert keys: %v", fake.upserts)
	}
	for _, apiKey := range fake.apiKeys {
		if apiKey != "service-role-key" {
			t.Fatalf("expected apikey header on every request, got %q", apiKey)
		}
	}
}

func TestSupabaseStoreMapsNotFound(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		fake := newFakeSupabaseStorage()
		fake.legacy404 = legacy
		store := newSupabaseStoreForTest(t, fake)

		if _, err := store.Get(context.Background(), DailyLogsKey("missing")); !errors.Is(err, ErrBlobNotFound) {
			t.Fatalf("legacy=%v: expected ErrBlobNotFound, got %v", legacy, err)
		}
	}
}

func TestSupabaseStoreListAndDelete(t *testing.T) {
	fake := newFakeSupabaseStorage()
	store := newSupabaseStoreForTest(t, fake)
	ctx := context.Background()

	for _, key := range []string{ProfileKey("sub"), DailyLogsKey("sub"), ProfileKey("other")} {
		if err := store.Put(ctx, key, []byte("x"), ContentTypeCSV); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "sub/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]bool{DailyLogsKey("sub"): true, ProfileKey("sub"): true}
	got := make(map[string]bool, len(keys))
	for _, key := range keys {
		got[key] = true
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, ProfileKey("sub")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, ProfileKey("sub")); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected deleted blob to be missing, got %v", err)
	}
}

func TestSupabaseStoreSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid JWT"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	store, err := NewSupabaseStore(server.URL, "bad", "patient-data", nil)
	if err != nil {
		t.Fatalf("NewSupabaseStore() unexpected error: %v", err)
	}
	err = store.Put(context.Background(), ProfileKey("sub"), []byte("{}"), ContentTypeJSON)
	if err == nil || errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestNewSupabaseStoreRequiresURLAndBucket(t *testing.T) {
	if _, err := NewSupabaseStore("", "key", "bucket", nil); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewSupabaseStore("http://localhost", "key", " ", nil); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}
