package layout

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"lintang/dronepatrol/pkg/datastructure"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

const (
	// ZoneTag marks an osm node or way as part of the patrol layout.
	ZoneTag = "patrol:zone"
	refTag  = "ref"
	eleTag  = "ele"
)

type objectScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// LoadOSMFile reads a layout from an .osm (xml) or .osm.pbf file.
func LoadOSMFile(ctx context.Context, path string) (*datastructure.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".pbf") {
		return LoadOSM(osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1)))
	}
	if ext := filepath.Ext(path); ext != ".osm" && ext != ".xml" {
		return nil, fmt.Errorf("unsupported layout file %q", path)
	}
	return LoadOSM(osmxml.New(ctx, f))
}

// LoadOSMReader reads an osm xml layout.
func LoadOSMReader(ctx context.Context, r io.Reader) (*datastructure.Graph, error) {
	return LoadOSM(osmxml.New(ctx, r))
}

// LoadOSM turns every node tagged patrol:zone into a location, in file order. The
// location id is the ref tag, falling back to the osm node id; altitude comes from ele.
// Ways tagged patrol:zone connect their consecutive member nodes.
func LoadOSM(scanner objectScanner) (*datastructure.Graph, error) {
	defer scanner.Close()

	g := datastructure.NewGraph()
	byNodeID := make(map[osm.NodeID]*datastructure.Location)
	ways := []*osm.Way{}

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			zoneStr := o.Tags.Find(ZoneTag)
			if zoneStr == "" {
				continue
			}
			zone, err := datastructure.ParseZone(zoneStr)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", o.ID, err)
			}

			id := o.Tags.Find(refTag)
			if id == "" {
				id = strconv.FormatInt(int64(o.ID), 10)
			}

			alt := 0.0
			if ele := o.Tags.Find(eleTag); ele != "" {
				alt, err = strconv.ParseFloat(ele, 64)
				if err != nil {
					return nil, fmt.Errorf("node %d: invalid ele %q", o.ID, ele)
				}
			}

			loc := datastructure.NewLocation(id, zone, o.Lat, o.Lon, alt)
			if err := g.Add(loc); err != nil {
				return nil, err
			}
			byNodeID[o.ID] = loc
		case *osm.Way:
			if o.Tags.Find(ZoneTag) != "" {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, w := range ways {
		for i := 0; i+1 < len(w.Nodes); i++ {
			from, okFrom := byNodeID[w.Nodes[i].ID]
			to, okTo := byNodeID[w.Nodes[i+1].ID]
			if !okFrom || !okTo {
				return nil, fmt.Errorf("way %d references node outside the layout", w.ID)
			}
			from.Connect(to)
		}
	}

	return g, nil
}

// Load reads the layout from file when set, otherwise generates the demo airfield.
func (a Airfield) Load(ctx context.Context, file string, hotspotCount int, seed uint64) (*datastructure.Graph, error) {
	if file != "" {
		return LoadOSMFile(ctx, file)
	}
	return a.Build(hotspotCount, seed)
}
