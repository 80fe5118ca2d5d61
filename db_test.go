package indexedredis

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
)

var (
	testSchema = NewSchema()
	userModel  = AddModel(testSchema, "User", []*Field{
		StringField("name"),
		StringField("email").Hashed(),
		IntField("age"),
		BoolField("active"),
		FloatField("score"),
		DecimalField("balance", 2),
		BytesField("avatar"),
		OpaqueField("prefs"),
		RefField("boss", "User"),
	}, "name", "email", "age", "active", "balance", "boss")
	noteModel = AddModel(testSchema, "Note", []*Field{
		StringField("title"),
		CompressedField("body", "zlib"),
		RefField("author", "User"),
	}, "title", "body", "author")
)

func TestDB(t *testing.T) {
	db := setup(t)

	u1 := must(db.New(userModel, map[string]any{
		"name":  "foo",
		"email": "foo@example.com",
		"age":   30,
	}))
	u2 := must(db.New(userModel, map[string]any{
		"name":  "bar",
		"email": "bar@example.com",
		"age":   25,
	}))
	ids := must(db.SaveAll([]*Record{u1, u2}, false))
	deepEqual(t, ids, []ID{1, 2})

	g := must(db.Get(userModel, 1))
	isnonnil(t, g)
	deepEqual(t, g.Get("name"), Str("foo"))
	deepEqual(t, g.Get("email"), Str("foo@example.com"))
	deepEqual(t, g.Get("age"), Int(30))
	deepEqual(t, g.Get("active"), Null())
	isnil(t, must(db.Get(userModel, 99)))

	recs := must(db.Query(userModel).Filter("name", "foo").All(false))
	deepEqual(t, len(recs), 1)
	deepEqual(t, recs[0].ID(), ID(1))

	recs = must(db.Query(userModel).Filter("email", "bar@example.com").All(false))
	deepEqual(t, len(recs), 1)
	deepEqual(t, recs[0].ID(), ID(2))

	n := must(db.New(noteModel, map[string]any{
		"title":  "hello",
		"body":   strings.Repeat("lorem ipsum ", 50),
		"author": u1,
	}))
	must(n.Save(false))

	n2 := must(db.Get(noteModel, n.ID()))
	body, _ := n2.Get("body").AsBytes()
	deepEqual(t, string(body), strings.Repeat("lorem ipsum ", 50))
	deepEqual(t, n2.Link("author").ID(), ID(1))

	ensure(db.DeleteByID(userModel, 1))
	isnil(t, must(db.Get(userModel, 1)))
	isempty(t, must(db.Query(userModel).Filter("name", "foo").IDs()))
}

func TestDBStats(t *testing.T) {
	db := setupMem(t)

	u := must(db.New(userModel, map[string]any{"name": "a", "email": "a@b.c"}))
	must(u.Save(false))
	must(db.Get(userModel, u.ID()))
	must(db.Query(userModel).Filter("name", "a").IDs())
	must(u.Reload(false))
	ensure(u.Delete())

	st := db.Stats()
	deepEqual(t, st.Saves, uint64(1))
	deepEqual(t, st.Gets, uint64(1))
	deepEqual(t, st.Lookups, uint64(1))
	deepEqual(t, st.Reloads, uint64(1))
	deepEqual(t, st.Deletes, uint64(1))
	if st.Reads == 0 || st.Writes == 0 {
		t.Errorf("** got reads=%d writes=%d, wanted both nonzero", st.Reads, st.Writes)
	}
}

func TestDBVerboseLogging(t *testing.T) {
	var lines []string
	scm := NewSchema()
	m := AddModel(scm, "Item", []*Field{StringField("name")}, "name")
	db := must(Open(NewMemStore(), scm, Options{
		Verbose: true,
		Logf: func(format string, args ...any) {
			lines = append(lines, fmt.Sprintf(format, args...))
		},
	}))
	defer db.Close()

	r := must(db.New(m, map[string]any{"name": "x"}))
	must(r.Save(false))
	must(r.Save(false))
	must(db.Get(m, r.ID()))
	ensure(r.Delete())

	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"db: SAVE Item/1 (insert, 1 fields)",
		"db: SAVE.NOOP Item/1",
		"db: GET Item/1",
		"db: DELETE Item/1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("** log is missing %q:\n%s", want, joined)
		}
	}
}

func TestOpenValidatesLinkTargets(t *testing.T) {
	scm := NewSchema()
	AddModel(scm, "Orphan", []*Field{RefField("parent", "Ghost")})
	_, err := OpenMem(scm, Options{})
	wanterr(t, err)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Errorf("** got %T, wanted *SchemaError", err)
	}
}

func setup(t testing.TB) *DB {
	t.Helper()

	dbFile := must(os.CreateTemp("", "indexedredis_test_*.db"))
	t.Logf("DB: %s", dbFile.Name())
	dbFile.Close()

	db := must(OpenBolt(dbFile.Name(), testSchema, Options{
		IsTesting: true,
	}))
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbFile.Name())
	})
	return db
}

func setupMem(t testing.TB) *DB {
	t.Helper()
	db := must(OpenMem(testSchema, Options{IsTesting: true}))
	t.Cleanup(func() { db.Close() })
	return db
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}

func isnil[T any, P ~*T](t testing.TB, a P) {
	if a != nil {
		t.Helper()
		t.Errorf("** got &%v, wanted nil", *a)
	}
}

func isnonnil[T any](t testing.TB, a *T) {
	if a == nil {
		t.Helper()
		t.Errorf("** got nil %T, wanted non-nil", a)
	}
}

func noerr(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("** unexpected error: %v", err)
	}
}

func wanterr(t testing.TB, err error) {
	if err == nil {
		t.Helper()
		t.Errorf("** got nil error, wanted one")
	}
}

func mustPanic(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("** expected a panic")
		}
	}()
	fn()
}

func x(data string) []byte {
	data = strings.ReplaceAll(data, " ", "")
	return must(hex.DecodeString(data))
}
