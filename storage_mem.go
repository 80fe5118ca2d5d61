package indexedredis

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type memStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	models map[string]*memModel
	closed bool
	writer bool
}

// NewMemStore returns a transient in-memory Store implementation intended
// for tests.
func NewMemStore() Store {
	s := &memStore{models: make(map[string]*memModel)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStore) Begin(writable bool) (StoreTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store closed")
	}
	if writable {
		for s.writer && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			return nil, fmt.Errorf("store closed")
		}
		s.writer = true
	}

	// Snapshot the entire store for transactional isolation (simplicity
	// over efficiency).
	snap := make(map[string]*memModel, len(s.models))
	for k, m := range s.models {
		snap[k] = m.clone()
	}

	return &memTx{
		writable: writable,
		base:     s,
		models:   snap,
	}, nil
}

func (s *memStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.models = nil
	if s.cond != nil {
		s.cond.Broadcast()
	}
	return nil
}

// memModel holds one model's state: the id sequence, the records and one
// value-to-ids map per indexed field.
type memModel struct {
	seq  uint64
	rows map[ID]map[string][]byte
	idx  map[string]map[string]map[ID]struct{}
}

func newMemModel() *memModel {
	return &memModel{
		rows: make(map[ID]map[string][]byte),
		idx:  make(map[string]map[string]map[ID]struct{}),
	}
}

func (m *memModel) clone() *memModel {
	if m == nil {
		return nil
	}
	out := &memModel{
		seq:  m.seq,
		rows: make(map[ID]map[string][]byte, len(m.rows)),
		idx:  make(map[string]map[string]map[ID]struct{}, len(m.idx)),
	}
	for id, fields := range m.rows {
		row := make(map[string][]byte, len(fields))
		for name, raw := range fields {
			row[name] = slices.Clone(raw)
		}
		out.rows[id] = row
	}
	for field, byValue := range m.idx {
		ov := make(map[string]map[ID]struct{}, len(byValue))
		for value, ids := range byValue {
			ov[value] = maps.Clone(ids)
		}
		out.idx[field] = ov
	}
	return out
}

type memTx struct {
	base     *memStore
	writable bool
	models   map[string]*memModel
	closed   bool
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) closeLocked() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.writable {
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
}

// model returns the named model's state, creating it when create is set.
func (tx *memTx) model(name string, create bool) *memModel {
	if tx.closed {
		panic("tx is closed")
	}
	m := tx.models[name]
	if m == nil && create {
		m = newMemModel()
		tx.models[name] = m
	}
	return m
}

func (tx *memTx) GetFields(model string, id ID) (map[string][]byte, error) {
	m := tx.model(model, false)
	if m == nil {
		return nil, nil
	}
	row := m.rows[id]
	if row == nil {
		return nil, nil
	}
	out := make(map[string][]byte, len(row))
	for name, raw := range row {
		out[name] = slices.Clone(raw)
	}
	return out, nil
}

func (tx *memTx) SetFields(model string, id ID, fields map[string][]byte) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	m := tx.model(model, true)
	row := m.rows[id]
	if row == nil {
		row = make(map[string][]byte, len(fields))
		m.rows[id] = row
	}
	for name, raw := range fields {
		row[name] = slices.Clone(raw)
	}
	return nil
}

func (tx *memTx) DeleteRecord(model string, id ID) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	m := tx.model(model, false)
	if m == nil {
		return nil
	}
	delete(m.rows, id)
	return nil
}

func (tx *memTx) NextID(model string) (ID, error) {
	if !tx.writable {
		return 0, fmt.Errorf("tx not writable")
	}
	m := tx.model(model, true)
	m.seq++
	return ID(m.seq), nil
}

func (tx *memTx) IndexAdd(model, field, value string, id ID) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	m := tx.model(model, true)
	byValue := m.idx[field]
	if byValue == nil {
		byValue = make(map[string]map[ID]struct{})
		m.idx[field] = byValue
	}
	ids := byValue[value]
	if ids == nil {
		ids = make(map[ID]struct{})
		byValue[value] = ids
	}
	ids[id] = struct{}{}
	return nil
}

func (tx *memTx) IndexDel(model, field, value string, id ID) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	m := tx.model(model, false)
	if m == nil {
		return nil
	}
	ids := m.idx[field][value]
	if ids == nil {
		return nil
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(m.idx[field], value)
	}
	return nil
}

func (tx *memTx) IndexLookup(model, field, value string) ([]ID, error) {
	m := tx.model(model, false)
	if m == nil {
		return nil, nil
	}
	ids := m.idx[field][value]
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]ID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (tx *memTx) IndexWalk(model, field string, fn func(value string, id ID) error) error {
	m := tx.model(model, false)
	if m == nil {
		return nil
	}
	byValue := m.idx[field]
	values := make([]string, 0, len(byValue))
	for value := range byValue {
		values = append(values, value)
	}
	slices.Sort(values)
	for _, value := range values {
		ids := make([]ID, 0, len(byValue[value]))
		for id := range byValue[value] {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if err := fn(value, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tx *memTx) ListIDs(model string) ([]ID, error) {
	m := tx.model(model, false)
	if m == nil {
		return nil, nil
	}
	out := make([]ID, 0, len(m.rows))
	for id := range m.rows {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (tx *memTx) DropIndex(model, field string) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	m := tx.model(model, false)
	if m == nil {
		return nil
	}
	delete(m.idx, field)
	return nil
}

func (tx *memTx) DropModel(model string) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	delete(tx.models, model)
	return nil
}

func (tx *memTx) Commit() error {
	if tx.closed {
		return nil
	}
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	if tx.base.closed {
		tx.closeLocked()
		return fmt.Errorf("store closed")
	}
	tx.base.models = tx.models
	tx.closeLocked()
	return nil
}

func (tx *memTx) Rollback() error {
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	tx.closeLocked()
	return nil
}
