package store

import "testing"

func Test_Pool_AcquireOnEmptyFails(t *testing.T) {
	p := newPool(0, NewStats())
	n, ok := p.acquire()
	if ok {
		t.Error("acquire on empty pool reported ok")
	}
	if n != nil {
		t.Error("acquire on empty pool returned non-nil node")
	}
	if got := p.len(); got != 1 {
		t.Errorf("pool len = %d, want 1 (permanent dummy)", got)
	}
}

func Test_Pool_AppendThenAcquireRoundTrips(t *testing.T) {
	p := newPool(0, NewStats())
	dummy := p.loadHead().n
	n := newNode(0, 0, true, nil, NewStats())
	n.state.store(stateRetired)
	n.refCount.Store(0)
	p.append(n)

	if got := p.len(); got != 2 {
		t.Fatalf("pool len after append = %d, want 2", got)
	}

	// acquire hands out the node at the head (the initial dummy); the
	// appended node takes its place as the new head.
	acquired, ok := p.acquire()
	if !ok {
		t.Fatal("acquire failed after append")
	}
	if acquired != dummy {
		t.Error("acquire returned a different node than the previous pool head")
	}
	if p.loadHead().n != n {
		t.Error("appended node did not become the pool head")
	}
	if acquired.state.load() != stateLive {
		t.Errorf("acquired node state = %v, want stateLive", acquired.state.load())
	}
	if got := p.len(); got != 1 {
		t.Errorf("pool len after acquire = %d, want 1", got)
	}
}

func Test_Pool_AcquireDeniedWhileRefCountHeld(t *testing.T) {
	p := newPool(0, NewStats())
	n := newNode(0, 0, true, nil, NewStats())
	n.state.store(stateRetired)
	n.refCount.Store(1)
	p.append(n)
	behind := newNode(0, 0, true, nil, NewStats())
	behind.state.store(stateRetired)
	p.append(behind) // pool: [dummy] -> [n] -> [behind]

	if _, ok := p.acquire(); !ok {
		t.Fatal("acquire failed to drain the dummy node")
	}
	// n is now the head, held at ref_count 1.
	if _, ok := p.acquire(); ok {
		t.Error("acquire succeeded on a node with a held ref count")
	}
	if got := p.len(); got != 2 {
		t.Errorf("pool len = %d, want 2 (acquire must not have drawn the held node)", got)
	}
}

func Test_Pool_FIFOOrdering(t *testing.T) {
	p := newPool(0, NewStats())
	// acquire hands out the node at the head, so the initial dummy comes out
	// first and the last appended node stays behind as the new dummy.
	nodes := []*node{p.loadHead().n}
	for i := 0; i < 5; i++ {
		n := newNode(0, 0, true, nil, NewStats())
		n.state.store(stateRetired)
		n.refCount.Store(0)
		p.append(n)
		nodes = append(nodes, n)
	}

	for i, want := range nodes[:len(nodes)-1] {
		got, ok := p.acquire()
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		if got != want {
			t.Errorf("acquire %d returned wrong node: got %p, want %p", i, got, want)
		}
	}
}

func Test_Pool_SoftCapReclaimsExcess(t *testing.T) {
	p := newPool(2, NewStats())
	for i := 0; i < 5; i++ {
		n := newNode(0, 0, true, nil, NewStats())
		n.state.store(stateRetired)
		n.refCount.Store(0)
		p.append(n)
	}
	if got := p.len(); got > 3 {
		t.Errorf("pool len = %d, want <= 3 under a soft cap of 2 plus the dummy", got)
	}
}
