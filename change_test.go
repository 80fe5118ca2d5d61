package indexedredis

import "testing"

func TestChangeString(t *testing.T) {
	deepEqual(t, Change{Old: Str("a"), New: Str("b")}.String(), `"a" => "b"`)
	deepEqual(t, Change{Old: Null(), New: Int(7)}.String(), "null => 7")
}

func TestDiffValues(t *testing.T) {
	db := setupMem(t)
	u := must(db.New(userModel, map[string]any{"name": "ann", "age": 30}))

	deepEqual(t, diffValues(userModel, u.base, u.vals), map[string]Change(nil))

	noerr(t, u.Set("name", "bea"))
	noerr(t, u.Set("active", true))
	diff := diffValues(userModel, u.base, u.vals)
	deepEqual(t, len(diff), 2)
	deepEqual(t, diff["name"], Change{Old: Str("ann"), New: Str("bea")})
	deepEqual(t, diff["active"], Change{Old: Null(), New: Bool(true)})

	// Setting a field back to its old value drops it from the diff.
	noerr(t, u.Set("name", "ann"))
	diff = diffValues(userModel, u.base, u.vals)
	deepEqual(t, len(diff), 1)
	deepEqual(t, diff["active"], Change{Old: Null(), New: Bool(true)})
}

func TestChangedFieldNames(t *testing.T) {
	deepEqual(t, changedFieldNames(nil), "")
	deepEqual(t, changedFieldNames(map[string]Change{
		"b": {},
		"a": {},
		"c": {},
	}), "a,b,c")
}
