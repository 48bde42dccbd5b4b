package instanceio

import (
	"strings"
	"testing"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

const formatBSample = `2 10 1.0
0 0 0 0 0 1000 0 0 0
1 10 0 1 0 500 0 0 2
2 20 0 -1 0 1000 0 1 0
`

func TestParseInstance_FormatBDetection(t *testing.T) {
	inst, err := ParseInstance("sample", strings.NewReader(formatBSample))
	if err != nil {
		t.Fatalf("ParseInstance: %v", err)
	}
	if inst.NNodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", inst.NNodes())
	}
	if inst.DeliveryOf(1) != 2 {
		t.Fatalf("expected delivery of 1 to be 2, got %d", inst.DeliveryOf(1))
	}
}

const formatASample = `NAME: sample-a
SIZE: 3
CAPACITY: 10
NODES
0 0 0 0 0 1000 0
1 10 0 1 0 500 0
2 20 0 -1 0 1000 0
EDGES
0 10 20
10 0 10
20 10 0
`

func TestParseInstance_FormatADetection(t *testing.T) {
	inst, err := ParseInstance("sample-a", strings.NewReader(formatASample))
	if err != nil {
		t.Fatalf("ParseInstance: %v", err)
	}
	if inst.NNodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", inst.NNodes())
	}
	if inst.Dist(0, 1) != 10 {
		t.Fatalf("expected explicit distance 10, got %d", inst.Dist(0, 1))
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	sol := &pdptw.Solution{Routes: []pdptw.Route{{Stops: []int{1, 2}}, {Stops: []int{3, 4}}}}
	var buf strings.Builder
	meta := SolutionMeta{InstanceName: "sample", Authors: "test", Date: "2026-08-06", Reference: "unit test"}
	if err := WriteSolution(&buf, meta, sol); err != nil {
		t.Fatalf("WriteSolution: %v", err)
	}

	gotMeta, gotSol, err := ParseSolution(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseSolution: %v", err)
	}
	if gotMeta.InstanceName != meta.InstanceName {
		t.Fatalf("instance name mismatch: %q vs %q", gotMeta.InstanceName, meta.InstanceName)
	}
	if len(gotSol.Routes) != 2 || gotSol.Routes[0].Stops[0] != 1 || gotSol.Routes[1].Stops[1] != 4 {
		t.Fatalf("unexpected round-tripped routes: %+v", gotSol.Routes)
	}
}
