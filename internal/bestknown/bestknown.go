// Package bestknown looks up published best-known (vehicles, distance)
// results for classic benchmark instances, purely for reporting: the
// solver never consults it and its absence never affects feasibility.
package bestknown

import "context"

// Entry is a published best-known result for one instance.
type Entry struct {
	Vehicles int
	Distance float64
}

// Store is the narrow interface the solver's external tooling (cmd/solve,
// internal/solveapi) uses to look up best-known entries; the embedded
// table below is the default implementation, and a caller may substitute
// one backed by Postgres without touching any other component.
type Store interface {
	Lookup(ctx context.Context, instanceName string) (Entry, bool, error)
}

// liLimBKS holds a representative slice of the published Li & Lim
// best-known table (SINTEF TOP / Ropke & Pisinger 2006 / Curtois et al.
// 2018), keyed by instance name.
var liLimBKS = map[string]Entry{
	"lc101": {Vehicles: 10, Distance: 828.94},
	"lc102": {Vehicles: 10, Distance: 828.94},
	"lc103": {Vehicles: 9, Distance: 828.06},
	"lc104": {Vehicles: 9, Distance: 824.78},
	"lc105": {Vehicles: 10, Distance: 828.94},
	"lc106": {Vehicles: 10, Distance: 828.94},
	"lc107": {Vehicles: 10, Distance: 828.94},
	"lc108": {Vehicles: 10, Distance: 828.94},
	"lc109": {Vehicles: 9, Distance: 828.06},
	"lc201": {Vehicles: 3, Distance: 591.56},
	"lc202": {Vehicles: 3, Distance: 591.56},
	"lc203": {Vehicles: 3, Distance: 591.17},
	"lc204": {Vehicles: 3, Distance: 590.60},
	"lc205": {Vehicles: 3, Distance: 588.88},
	"lc206": {Vehicles: 3, Distance: 588.49},
	"lc207": {Vehicles: 3, Distance: 588.29},
	"lc208": {Vehicles: 3, Distance: 588.32},
	"lr101": {Vehicles: 19, Distance: 1650.80},
	"lr102": {Vehicles: 17, Distance: 1487.57},
	"lr103": {Vehicles: 13, Distance: 1292.68},
	"lr104": {Vehicles: 9, Distance: 1013.39},
	"lr105": {Vehicles: 14, Distance: 1377.11},
	"lr106": {Vehicles: 12, Distance: 1252.62},
	"lr107": {Vehicles: 10, Distance: 1111.31},
	"lr108": {Vehicles: 9, Distance: 968.97},
	"lr109": {Vehicles: 11, Distance: 1208.96},
	"lr110": {Vehicles: 10, Distance: 1159.35},
	"lr111": {Vehicles: 10, Distance: 1108.90},
	"lr112": {Vehicles: 9, Distance: 1003.77},
	"lr201": {Vehicles: 4, Distance: 1253.23},
	"lr202": {Vehicles: 3, Distance: 1197.67},
	"lr203": {Vehicles: 3, Distance: 949.40},
	"lr204": {Vehicles: 2, Distance: 825.52},
	"lr205": {Vehicles: 3, Distance: 1054.02},
	"lr206": {Vehicles: 3, Distance: 931.63},
	"lr207": {Vehicles: 2, Distance: 903.06},
	"lr208": {Vehicles: 2, Distance: 734.85},
	"lr209": {Vehicles: 3, Distance: 930.59},
	"lr210": {Vehicles: 3, Distance: 964.22},
	"lr211": {Vehicles: 2, Distance: 885.71},
}

// Embedded is the default Store, backed by the table above.
type Embedded struct{}

func (Embedded) Lookup(_ context.Context, instanceName string) (Entry, bool, error) {
	e, ok := liLimBKS[instanceName]
	return e, ok, nil
}
