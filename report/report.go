// Package report builds coverage reports from a TETRA terminal and stores
// them as JSON lines.
package report

import (
	"i4.energy/across/tetracov/terminal"
)

// Report is one coverage sample. Its JSON encoding is the line format of
// the report file.
type Report struct {
	Issi        string   `json:"issi"`
	Signal      Signal   `json:"signal"`
	CurrentCell Cell     `json:"currentcell"`
	Location    Position `json:"location"`
}

type Signal struct {
	// RSSI in dBm.
	RSSI int `json:"rssi"`
}

// Cell is the serving cell at the time of the sample.
type Cell struct {
	LocationArea string `json:"la"`
	Service      string `json:"service"`
	Security     int    `json:"security"`
	// SDSTL is 1 when the cell supports SDS-TL, 0 otherwise.
	SDSTL int `json:"sdstl"`
}

type Position struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Satellites int     `json:"satellites"`
	Timestamp  string  `json:"timestamp"`
}

// New assembles a report from the readings of one poll.
func New(issi terminal.Issi, rssi terminal.RssiReading, cell terminal.CellInfo, loc terminal.Location) Report {
	sdstl := 0
	if cell.SDSTL {
		sdstl = 1
	}
	return Report{
		Issi:   string(issi),
		Signal: Signal{RSSI: rssi.DBm},
		CurrentCell: Cell{
			LocationArea: cell.LocationArea,
			Service:      cell.Service,
			Security:     cell.SecurityLevel,
			SDSTL:        sdstl,
		},
		Location: Position{
			Lat:        loc.Latitude,
			Lon:        loc.Longitude,
			Satellites: loc.Satellites,
			Timestamp:  loc.Timestamp,
		},
	}
}
