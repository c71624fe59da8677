package docstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MemoryStore keeps records in process memory. It encodes and decodes with
// the same bson tags as MongoStore, so the two are interchangeable.
type MemoryStore struct {
	mu          sync.Mutex
	now         func() time.Time
	collections map[string][]bson.Raw
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:         time.Now,
		collections: make(map[string][]bson.Raw),
	}
}

func (s *MemoryStore) CreateRecord(_ context.Context, collection string, data any) (string, error) {
	doc, err := toDocument(data)
	if err != nil {
		return "", err
	}
	id := newID()
	stamp(doc, id, s.now())

	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], raw)
	return id, nil
}

func (s *MemoryStore) ListRecords(_ context.Context, collection string, sort Sort, out any) error {
	s.mu.Lock()
	docs := slices.Clone(s.collections[collection])
	s.mu.Unlock()

	if sort.Field != "" {
		slices.SortStableFunc(docs, func(a, b bson.Raw) int {
			c := compareValues(a.Lookup(sort.Field), b.Lookup(sort.Field))
			if c == 0 {
				c = compareValues(a.Lookup("_id"), b.Lookup("_id"))
			}
			if sort.Descending {
				return -c
			}
			return c
		})
	}
	return decodeAll(docs, out)
}

func (s *MemoryStore) GetRecord(_ context.Context, collection, id string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return ErrNotFound
	}
	return bson.Unmarshal(s.collections[collection][i], out)
}

func (s *MemoryStore) UpdateRecord(_ context.Context, collection, id string, patch any) error {
	set, err := toDocument(patch)
	if err != nil {
		return err
	}
	delete(set, "_id")
	delete(set, "created_at")
	set["updated_at"] = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return ErrNotFound
	}
	doc := bson.D{}
	if err := bson.Unmarshal(s.collections[collection][i], &doc); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	for k, v := range set {
		doc = setField(doc, k, v)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	s.collections[collection][i] = raw
	return nil
}

func (s *MemoryStore) DeleteRecord(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return ErrNotFound
	}
	s.collections[collection] = slices.Delete(s.collections[collection], i, i+1)
	return nil
}

func (s *MemoryStore) index(collection, id string) int {
	return slices.IndexFunc(s.collections[collection], func(doc bson.Raw) bool {
		value, ok := doc.Lookup("_id").StringValueOK()
		return ok && value == id
	})
}

func setField(doc bson.D, key string, value any) bson.D {
	for i := range doc {
		if doc[i].Key == key {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: value})
}

func decodeAll(docs []bson.Raw, out any) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return errors.New("docstore: out must be a pointer to a slice")
	}
	slice := v.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(doc, elem.Interface()); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

// compareValues orders the scalar types records are sorted by. Missing
// values sort first.
func compareValues(a, b bson.RawValue) int {
	if a.Type != b.Type {
		switch {
		case a.Type == 0:
			return -1
		case b.Type == 0:
			return 1
		}
		return strings.Compare(a.Type.String(), b.Type.String())
	}
	switch a.Type {
	case bsontype.DateTime:
		return cmp.Compare(a.DateTime(), b.DateTime())
	case bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	case bsontype.Int32:
		return cmp.Compare(a.Int32(), b.Int32())
	case bsontype.Int64:
		return cmp.Compare(a.Int64(), b.Int64())
	case bsontype.Double:
		return cmp.Compare(a.Double(), b.Double())
	}
	return 0
}
