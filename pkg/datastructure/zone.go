package datastructure

import (
	"fmt"
	"strings"
)

// Zone classifies a location on the airfield property.
type Zone uint8

const (
	ZoneHotspot Zone = iota
	ZoneTerminal
	ZoneAerodrome
	ZonePropertyLine
)

var zoneNames = [...]string{
	ZoneHotspot:      "HOTSPOT",
	ZoneTerminal:     "TERMINAL",
	ZoneAerodrome:    "AERODROME",
	ZonePropertyLine: "PROPERTY_LINE",
}

func (z Zone) String() string {
	if int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return fmt.Sprintf("Zone(%d)", uint8(z))
}

func (z Zone) Valid() bool {
	return int(z) < len(zoneNames)
}

// ParseZone accepts the zone name in any case, with '-' or ' ' in place of '_'.
func ParseZone(s string) (Zone, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for i, name := range zoneNames {
		if name == norm {
			return Zone(i), nil
		}
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

func (z Zone) MarshalText() ([]byte, error) {
	if !z.Valid() {
		return nil, fmt.Errorf("invalid zone %d", uint8(z))
	}
	return []byte(z.String()), nil
}

func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}
