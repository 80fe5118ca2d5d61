package indexedredis

import (
	"errors"
	"testing"
)

// Every operation begins a store transaction through db.view or db.update;
// once the store is gone, they all fail with a StorageError instead of
// panicking or silently succeeding.
func TestOpsOnClosedStoreReturnStorageError(t *testing.T) {
	db := must(OpenMem(testSchema, Options{IsTesting: true}))
	u := must(db.New(userModel, map[string]any{"name": "ann", "email": "a@b.c"}))
	must(u.Save(false))
	ensure(db.Close())

	wantStorageError := func(what string, err error) {
		t.Helper()
		var se *StorageError
		if !errors.As(err, &se) {
			t.Errorf("** %s after close: got %v, wanted *StorageError", what, err)
		}
	}

	_, err := db.Get(userModel, u.ID())
	wantStorageError("Get", err)

	_, err = db.Exists(userModel, u.ID())
	wantStorageError("Exists", err)

	_, err = u.Save(false)
	wantStorageError("Save", err)

	_, err = db.Query(userModel).Filter("name", "ann").IDs()
	wantStorageError("Query", err)

	wantStorageError("DeleteByID", db.DeleteByID(userModel, u.ID()))

	_, err = u.Reload(false)
	wantStorageError("Reload", err)

	wantStorageError("Reindex", db.Reindex(userModel))
}
