package indexedredis

import (
	"fmt"
	"log/slog"
	"strings"
)

type DumpFlags uint64

const (
	DumpModelHeaders = DumpFlags(1 << iota)
	DumpRecords
	DumpIndexes

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the store's contents for debugging: records as field=value
// lists and index entries as value => id pairs, model by model.
func (db *DB) Dump(f DumpFlags) string {
	var buf strings.Builder
	err := db.view("dump", func(tx StoreTx) error {
		for _, m := range db.schema.models {
			if err := db.dumpModel(&buf, tx, f, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(&buf, "** dump failed: %v\n", err)
	}
	return buf.String()
}

func (db *DB) dumpModel(w *strings.Builder, tx StoreTx, f DumpFlags, m *Model) error {
	ids, err := tx.ListIDs(m.name)
	if err != nil {
		return err
	}

	if f.Contains(DumpModelHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d records)\n", m.name, len(ids))
	}

	if f.Contains(DumpRecords) {
		for _, id := range ids {
			db.dumpRecord(w, tx, m, id)
		}
	}

	if f.Contains(DumpIndexes) {
		for _, fld := range m.indexed {
			fmt.Fprintln(w, dumpSep2)
			prefix := m.name + ".i." + fld.name
			fmt.Fprintln(w, prefix)
			var pos int
			err := tx.IndexWalk(m.name, fld.name, func(value string, id ID) error {
				pos++
				fmt.Fprintf(w, "%s.%d: %q => %s/%d\n", prefix, pos, value, m.name, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (db *DB) dumpRecord(w *strings.Builder, tx StoreTx, m *Model, id ID) {
	stored, err := tx.GetFields(m.name, id)
	var r *Record
	if err == nil {
		r, err = db.recordFromStored(m, id, stored)
	}
	if err != nil {
		fmt.Fprintf(w, "%s/%d ** ERROR: %v\n", m.name, id, err)
		return
	}
	parts := make([]string, 0, len(m.fields))
	for _, fld := range m.fields {
		parts = append(parts, fld.name+"="+r.vals[fld.name].String())
	}
	fmt.Fprintf(w, "%s/%d = %s\n", m.name, id, strings.Join(parts, " "))
}

// LogValue renders a compact reference for log/slog output, so records can be
// handed to slog calls without dumping every field.
func (r *Record) LogValue() slog.Value {
	if r == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{
		slog.String("model", r.model.name),
		slog.Uint64("id", uint64(r.id)),
	}
	if changed := r.UpdatedFields(); len(changed) > 0 {
		attrs = append(attrs, slog.String("dirty", changedFieldNames(changed)))
	}
	return slog.GroupValue(attrs...)
}
