package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dbsmedya/piiscan/internal/sampler"
	"github.com/dbsmedya/piiscan/internal/types"
)

type fakeIntrospector struct {
	engine     string
	containers []string
	listErr    error
	tables     map[string][]string
	tableErr   map[string]error
	handles    map[string]*types.TableHandle // "container.table"
	metaErr    map[string]error
	onMeta     func(key string)
}

func (f *fakeIntrospector) Engine() string { return f.engine }

func (f *fakeIntrospector) ListContainers(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

func (f *fakeIntrospector) ListTables(_ context.Context, container string) ([]string, error) {
	if err := f.tableErr[container]; err != nil {
		return nil, err
	}
	return f.tables[container], nil
}

func (f *fakeIntrospector) TableMetadata(_ context.Context, container, table string) (*types.TableHandle, error) {
	key := container + "." + table
	if f.onMeta != nil {
		f.onMeta(key)
	}
	if err := f.metaErr[key]; err != nil {
		return nil, err
	}
	h, ok := f.handles[key]
	if !ok {
		return nil, errors.New("no such table")
	}
	cp := *h
	return &cp, nil
}

// fakeSampler applies the real sampling policy to in-memory rows.
type fakeSampler struct {
	sampleSize int
	rows       map[string][][]interface{} // "container.table"
	fail       map[string]string
	delay      time.Duration

	active  atomic.Int32
	maxSeen atomic.Int32
	mu      sync.Mutex
	calls   []string
}

func (f *fakeSampler) LoadSample(_ context.Context, h *types.TableHandle) (*types.Sample, types.SamplingInfo) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		cur := f.maxSeen.Load()
		if n <= cur || f.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}

	key := h.QualifiedName()
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	info := types.SamplingInfo{TotalRows: h.RowCount}
	if msg, ok := f.fail[key]; ok {
		info.Method = types.SampleError
		info.Error = msg
		return &types.Sample{}, info
	}

	method := sampler.Plan(h.RowCount, f.sampleSize, types.SampleRandomLimit)
	info.Method = method
	if method == types.SampleEmpty {
		return &types.Sample{}, info
	}

	cols := make([]string, len(h.Columns))
	for i, c := range h.Columns {
		cols[i] = c.Name
	}
	rows := f.rows[key]
	if len(rows) > f.sampleSize {
		rows = rows[:f.sampleSize]
	}
	info.SampledRows = len(rows)
	info.SamplingRatio = float64(len(rows)) / float64(h.RowCount)
	return &types.Sample{Columns: cols, Rows: rows}, info
}

func textCol(name string) types.ColumnMetadata {
	return types.ColumnMetadata{Name: name, DeclaredType: "varchar(100)", Kind: types.KindText, Length: types.Int64Ptr(100)}
}

func numCol(name string) types.ColumnMetadata {
	return types.ColumnMetadata{Name: name, DeclaredType: "int", Kind: types.KindNumeric}
}

// shopFixture builds a catalog with a medium-risk, a low-risk, an empty
// and a large table in "shop", plus a system container and a second user
// container.
func shopFixture() (*fakeIntrospector, *fakeSampler) {
	intro := &fakeIntrospector{
		engine:     "mysql",
		containers: []string{"information_schema", "shop", "mysql", "crm", "backup_2023"},
		tables: map[string][]string{
			"shop": {"archive", "customers", "events", "orders"},
			"crm":  {"contacts"},
		},
		handles: map[string]*types.TableHandle{
			"shop.customers": {Container: "shop", Name: "customers", RowCount: 5,
				Columns: []types.ColumnMetadata{numCol("id"), textCol("email")}},
			"shop.orders": {Container: "shop", Name: "orders", RowCount: 3,
				Columns: []types.ColumnMetadata{numCol("id"), textCol("status")}},
			"shop.archive": {Container: "shop", Name: "archive", RowCount: 0,
				Columns: []types.ColumnMetadata{numCol("id"), textCol("email")}},
			"shop.events": {Container: "shop", Name: "events", RowCount: 2_000_000,
				Columns: []types.ColumnMetadata{
					numCol("id"), numCol("kind"), numCol("ts"), numCol("a"), numCol("b"),
					numCol("c"), numCol("d"), textCol("payload"), textCol("source"), textCol("note"),
				}},
			"crm.contacts": {Container: "crm", Name: "contacts", RowCount: 2,
				Columns: []types.ColumnMetadata{textCol("phone")}},
		},
	}

	s := &fakeSampler{
		sampleSize: 100,
		rows: map[string][][]interface{}{
			"shop.customers": {
				{int64(1), "a@test.com"}, {int64(2), "b@test.com"}, {int64(3), "c@test.com"},
				{int64(4), "n/a"}, {int64(5), "unknown"},
			},
			"shop.orders":  {{int64(1), "paid"}, {int64(2), "shipped"}, {int64(3), "paid"}},
			"shop.events":  eventsRows(),
			"crm.contacts": {{"010-1234-5678"}, {"02-123-4567"}},
		},
	}
	return intro, s
}

func eventsRows() [][]interface{} {
	rows := make([][]interface{}, 100)
	for i := range rows {
		rows[i] = []interface{}{int64(i), int64(1), int64(0), int64(0), int64(0), int64(0), int64(0), "{}", "web", nil}
	}
	return rows
}

func tableNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%02d", i)
	}
	return out
}

// sortedCalls returns the tables the sampler was asked for, sorted.
func sortedCalls(f *fakeSampler) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Sorted(slices.Values(f.calls))
}
