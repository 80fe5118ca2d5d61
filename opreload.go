package indexedredis

// Reload re-reads the record from the store, replacing local values, and
// reports how the store differed from the record's current values, local
// modifications included. Returns nil when nothing differed.
//
// A link field is reported when its target id changed. With cascadeObjects,
// a resolved link whose target id is unchanged is additionally compared
// against the target's stored state, recursively; when the target (or
// anything it links to) changed, the field is reported and the link is
// replaced with a freshly fetched copy of the target.
func (r *Record) Reload(cascadeObjects bool) (map[string]Change, error) {
	if !r.saved {
		return nil, ErrNotSaved
	}
	r.db.stats.reloads.Add(1)
	var changes map[string]Change
	err := r.db.view("reload", func(tx StoreTx) error {
		stored, err := tx.GetFields(r.model.name, r.id)
		if err != nil {
			return storErrf("reload", r.model.name, r.id, err)
		}
		if stored == nil {
			return &NotFoundError{r.model.name, r.id}
		}
		changes, err = r.applyReload(tx, stored, cascadeObjects)
		return err
	})
	if err != nil {
		return nil, err
	}
	if r.db.verbose {
		if len(changes) == 0 {
			r.db.logf("db: RELOAD.NOOP %s/%d", r.model.name, r.id)
		} else {
			r.db.logf("db: RELOAD %s/%d (%s)", r.model.name, r.id, changedFieldNames(changes))
		}
	}
	return changes, nil
}

func (r *Record) applyReload(tx StoreTx, stored map[string][]byte, cascadeObjects bool) (map[string]Change, error) {
	var changes map[string]Change
	report := func(name string, old, now Value) {
		if changes == nil {
			changes = make(map[string]Change)
		}
		changes[name] = Change{Old: old, New: now}
	}

	type cascadeCheck struct {
		f   *Field
		cur Value
		cp  *freshCopy
	}
	var checks []cascadeCheck
	seen := make(map[refKey]*freshCopy)

	for _, f := range r.model.fields {
		fresh, err := f.FromStorage(stored[f.name])
		if err != nil {
			return nil, err
		}
		r.attach(&fresh)
		cur := r.vals[f.name]
		curLink, _ := cur.AsLink()
		freshLink, _ := fresh.AsLink()

		if curLink != nil || freshLink != nil {
			if linkID(curLink) != linkID(freshLink) {
				report(f.name, cur, fresh)
				r.vals[f.name] = fresh
				r.base[f.name] = fresh
				continue
			}
			if cascadeObjects && curLink != nil && curLink.obj != nil && curLink.obj.id != 0 {
				cp, err := freshCopyInTx(tx, curLink.obj, seen)
				if err != nil {
					return nil, err
				}
				if cp == nil {
					// The target vanished from the store.
					report(f.name, cur, fresh)
					r.vals[f.name] = fresh
					r.base[f.name] = fresh
					continue
				}
				checks = append(checks, cascadeCheck{f, cur, cp})
				continue
			}
			// Same target, keep the resolved cache if any.
			r.base[f.name] = cur
			continue
		}

		if !cur.Equal(fresh) {
			report(f.name, cur, fresh)
		}
		r.vals[f.name] = fresh
		r.base[f.name] = fresh
	}

	// A cyclic target graph can finish a copy before a peer's change flag
	// settles; propagate flags across links until stable.
	propagateFreshChanges(seen)
	for _, ck := range checks {
		if !ck.cp.changed {
			r.base[ck.f.name] = ck.cur
			continue
		}
		curLink, _ := ck.cur.AsLink()
		nv := RefValue(&Link{
			db:         r.db,
			targetName: curLink.targetName,
			id:         ck.cp.rec.id,
			obj:        ck.cp.rec,
			fetched:    true,
		})
		report(ck.f.name, ck.cur, nv)
		r.vals[ck.f.name] = nv
		r.base[ck.f.name] = nv
	}
	return changes, nil
}

// freshCopy is one record of a cascade reload: a clean copy built from the
// store, plus whether it (or anything it links to) differs from the
// in-memory state it replaces.
type freshCopy struct {
	rec     *Record
	changed bool
	links   []*freshCopy
}

// freshCopyInTx builds a fresh copy of cur from the store, recursing into
// resolved links that kept their target id. Returns nil when the record no
// longer exists. Copies are shared through seen, so a target reachable
// twice is fetched once and cycles terminate.
func freshCopyInTx(tx StoreTx, cur *Record, seen map[refKey]*freshCopy) (*freshCopy, error) {
	key := refKey{cur.model.name, cur.id}
	if cp := seen[key]; cp != nil {
		return cp, nil
	}
	stored, err := tx.GetFields(cur.model.name, cur.id)
	if err != nil {
		return nil, storErrf("reload", cur.model.name, cur.id, err)
	}
	if stored == nil {
		return nil, nil
	}

	db := cur.db
	rec := &Record{
		db:    db,
		model: cur.model,
		id:    cur.id,
		saved: true,
		vals:  make(map[string]Value, len(cur.model.fields)),
	}
	cp := &freshCopy{rec: rec}
	seen[key] = cp

	for _, f := range cur.model.fields {
		fresh, err := f.FromStorage(stored[f.name])
		if err != nil {
			return nil, err
		}
		rec.attach(&fresh)
		curV := cur.vals[f.name]
		curLink, _ := curV.AsLink()
		freshLink, _ := fresh.AsLink()

		if curLink != nil && freshLink != nil &&
			linkID(curLink) == linkID(freshLink) &&
			curLink.obj != nil && curLink.obj.id != 0 {
			sub, err := freshCopyInTx(tx, curLink.obj, seen)
			if err != nil {
				return nil, err
			}
			if sub == nil {
				cp.changed = true
				rec.vals[f.name] = fresh
				continue
			}
			cp.links = append(cp.links, sub)
			if sub.changed {
				cp.changed = true
			}
			rec.vals[f.name] = RefValue(&Link{
				db:         db,
				targetName: curLink.targetName,
				id:         sub.rec.id,
				obj:        sub.rec,
				fetched:    true,
			})
			continue
		}

		if !curV.Equal(fresh) {
			cp.changed = true
		}
		rec.vals[f.name] = fresh
	}
	rec.base = snapshotValues(rec.vals)
	return cp, nil
}

func propagateFreshChanges(seen map[refKey]*freshCopy) {
	for {
		dirty := false
		for _, cp := range seen {
			if cp.changed {
				continue
			}
			for _, sub := range cp.links {
				if sub.changed {
					cp.changed = true
					dirty = true
					break
				}
			}
		}
		if !dirty {
			return
		}
	}
}
