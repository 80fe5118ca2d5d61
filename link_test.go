package indexedredis

import (
	"errors"
	"testing"
)

func TestLinkLazyByID(t *testing.T) {
	db := setupMem(t)

	u := must(db.New(userModel, map[string]any{"name": "ann", "boss": uint64(7)}))
	l := u.Link("boss")
	isnonnil(t, l)
	deepEqual(t, l.ID(), ID(7))
	deepEqual(t, l.IsFetched(), false)
	isnil(t, l.Record())
	deepEqual(t, l.ModelName(), "User")
	deepEqual(t, l.String(), "ref(User/7)")
}

func TestLinkResolveCaches(t *testing.T) {
	db := setupMem(t)

	boss := must(db.New(userModel, map[string]any{"name": "zoe"}))
	must(boss.Save(false))

	u := must(db.New(userModel, map[string]any{"name": "ann", "boss": boss.ID()}))
	l := u.Link("boss")
	deepEqual(t, l.IsFetched(), false)

	before := db.Stats().Gets
	got := must(l.Resolve())
	isnonnil(t, got)
	deepEqual(t, got.Get("name"), Str("zoe"))
	deepEqual(t, l.IsFetched(), true)
	deepEqual(t, db.Stats().Gets, before+1)

	again := must(l.Resolve())
	deepEqual(t, again, got)
	deepEqual(t, db.Stats().Gets, before+1) // cached, no second fetch
	deepEqual(t, l.String(), "ref(User/1*)")
}

func TestLinkResolveMissingTarget(t *testing.T) {
	db := setupMem(t)

	u := must(db.New(userModel, map[string]any{"name": "ann", "boss": uint64(99)}))
	l := u.Link("boss")
	got, err := l.Resolve()
	noerr(t, err)
	isnil(t, got)
	deepEqual(t, l.IsFetched(), false) // a missing target is retried next time
}

func TestLinkNullAndZero(t *testing.T) {
	db := setupMem(t)

	u := must(db.New(userModel, map[string]any{"name": "ann"}))
	isnil(t, u.Link("boss"))
	got, err := u.ResolveLink("boss")
	noerr(t, err)
	isnil(t, got)

	var l *Link
	deepEqual(t, l.ID(), ID(0))
	deepEqual(t, l.IsFetched(), false)
	deepEqual(t, l.String(), "ref(nil)")

	// Zero and empty inputs mean no link.
	ensure(u.Set("boss", 0))
	deepEqual(t, u.Get("boss"), Null())
	ensure(u.Set("boss", ""))
	deepEqual(t, u.Get("boss"), Null())
	ensure(u.Set("boss", uint64(3)))
	ensure(u.Set("boss", nil))
	deepEqual(t, u.Get("boss"), Null())
}

func TestLinkInputConversion(t *testing.T) {
	db := setupMem(t)

	u := must(db.New(userModel, map[string]any{"name": "ann"}))
	ensure(u.Set("boss", "12"))
	deepEqual(t, u.Link("boss").ID(), ID(12))

	wanterr(t, u.Set("boss", "abc"))
	wanterr(t, u.Set("boss", -1))

	n := must(db.New(noteModel, map[string]any{"title": "x"}))
	err := u.Set("boss", n) // a Note does not fit a link to User
	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Errorf("** got %T, wanted *ConversionError", err)
	}
	// Same check applies to a pre-wrapped Value.
	wanterr(t, u.Set("boss", RefValue(&Link{targetName: "Note", id: 5})))

	// A resolved link tracks its record's id, which is zero until saved.
	peer := must(db.New(userModel, map[string]any{"name": "bob"}))
	ensure(u.Set("boss", peer))
	deepEqual(t, u.Link("boss").ID(), ID(0))
	deepEqual(t, u.Link("boss").Record(), peer)
	must(peer.Save(false))
	deepEqual(t, u.Link("boss").ID(), peer.ID())
}

func TestLinkUnattached(t *testing.T) {
	l := &Link{targetName: "User", id: 3}
	_, err := l.Resolve()
	wanterr(t, err)
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Errorf("** got %T, wanted *IntegrityError", err)
	}
}
