package firestore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// fakeDocuments is an in-memory documents implementation. Errors set on it
// are returned by every call.
type fakeDocuments struct {
	mu     sync.Mutex
	colls  map[string]map[string]map[string]value
	nextID int
	err    error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{colls: map[string]map[string]map[string]value{}}
}

func (f *fakeDocuments) put(collection, id string, fields map[string]value) {
	if f.colls[collection] == nil {
		f.colls[collection] = map[string]map[string]value{}
	}
	f.colls[collection][id] = fields
}

func (f *fakeDocuments) List(_ context.Context, collection, orderBy string) ([]document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]document, 0, len(f.colls[collection]))
	for id, fields := range f.colls[collection] {
		out = append(out, document{ID: id, Fields: fields})
	}
	// Name order, as Firestore lists by default.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if orderBy == "date desc" {
		sort.SliceStable(out, func(i, j int) bool {
			return str(out[i].Fields["date"]) > str(out[j].Fields["date"])
		})
	}
	return out, nil
}

func (f *fakeDocuments) Create(_ context.Context, collection string, fields map[string]value) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	id := fmt.Sprintf("doc%03d", f.nextID)
	f.put(collection, id, fields)
	return id, nil
}

func (f *fakeDocuments) Set(_ context.Context, collection, id string, fields map[string]value, mustExist bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.colls[collection][id]; mustExist && !ok {
		return errDocumentMissing
	}
	f.put(collection, id, fields)
	return nil
}

func (f *fakeDocuments) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.colls[collection], id)
	return nil
}

func str(v value) string {
	if v.StringValue == nil {
		return ""
	}
	return *v.StringValue
}
