// Package spatial indexes layout locations in an rtree for point lookups.
package spatial

import (
	"errors"

	"lintang/dronepatrol/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

const tol = 0.00001

var ErrEmptyIndex = errors.New("spatial index is empty")

type locationRect struct {
	point    rtreego.Point
	location *datastructure.Location
}

func (l *locationRect) Bounds() rtreego.Rect {
	return l.point.ToRect(tol)
}

// Index is read-only after construction.
type Index struct {
	tree *rtreego.Rtree
}

func NewIndex(locations []*datastructure.Location) *Index {
	objs := make([]rtreego.Spatial, 0, len(locations))
	for _, loc := range locations {
		objs = append(objs, &locationRect{
			point:    rtreego.Point{loc.Lat(), loc.Lon()},
			location: loc,
		})
	}
	// 2 dimension, 25 min entries, 50 max entries
	return &Index{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

func (idx *Index) Size() int {
	return idx.tree.Size()
}

func (idx *Index) Nearest(p datastructure.Coordinate) (*datastructure.Location, error) {
	if idx.tree.Size() == 0 {
		return nil, ErrEmptyIndex
	}
	nn := idx.tree.NearestNeighbor(rtreego.Point{p.Lat, p.Lon})
	return nn.(*locationRect).location, nil
}

// NearestK returns up to k locations ordered by distance, optionally restricted to one zone.
func (idx *Index) NearestK(p datastructure.Coordinate, k int, zones ...datastructure.Zone) []*datastructure.Location {
	var filters []rtreego.Filter
	if len(zones) > 0 {
		filters = append(filters, zoneFilter(zones))
	}
	nn := idx.tree.NearestNeighbors(k, rtreego.Point{p.Lat, p.Lon}, filters...)

	res := make([]*datastructure.Location, 0, len(nn))
	for _, obj := range nn {
		if obj == nil {
			continue
		}
		res = append(res, obj.(*locationRect).location)
	}
	return res
}

// Within returns the locations inside the lat/lon box.
func (idx *Index) Within(minLat, minLon, maxLat, maxLon float64) ([]*datastructure.Location, error) {
	rect, err := rtreego.NewRect(rtreego.Point{minLat, minLon}, []float64{maxLat - minLat, maxLon - minLon})
	if err != nil {
		return nil, err
	}
	found := idx.tree.SearchIntersect(rect)
	res := make([]*datastructure.Location, 0, len(found))
	for _, obj := range found {
		res = append(res, obj.(*locationRect).location)
	}
	return res, nil
}

func zoneFilter(zones []datastructure.Zone) rtreego.Filter {
	return func(results []rtreego.Spatial, object rtreego.Spatial) (refuse, abort bool) {
		z := object.(*locationRect).location.Zone()
		for _, want := range zones {
			if z == want {
				return false, false
			}
		}
		return true, false
	}
}
