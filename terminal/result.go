package terminal

import (
	"fmt"
	"strings"
)

// Result is the typed outcome of a successful command. The concrete type is
// determined by the command kind.
type Result interface {
	Kind() Kind
}

// Issi is the individual short subscriber identity of the terminal.
type Issi string

// ModelInfo holds the comma separated fields the terminal reports for its
// model, e.g. product code, model number and firmware.
type ModelInfo struct {
	Fields []string
}

type Manufacturer string

type SerialNumber string

// RssiReading is the received signal strength.
type RssiReading struct {
	Index int
	DBm   int
}

// Location is a GPS fix converted to geographic coordinates.
type Location struct {
	Latitude   float64
	Longitude  float64
	Satellites int
	// Timestamp is the UTC time of the fix as reported, hhmmss.
	Timestamp string

	Zone     int
	Northern bool
	Easting  float64
	Northing float64
}

// CellInfo describes the serving cell.
type CellInfo struct {
	LocationArea  string
	Service       string
	SecurityLevel int
	SDSTL         bool
}

// NeighbourCell is one record of a neighbour cell list. The field layout
// is manufacturer specific, so the fields are kept in wire order.
type NeighbourCell struct {
	Fields []string
}

type NeighbourCells []NeighbourCell

// Ack is the result of commands that only acknowledge.
type Ack struct {
	For Kind
}

func (Issi) Kind() Kind           { return KindIdentity }
func (ModelInfo) Kind() Kind      { return KindModel }
func (Manufacturer) Kind() Kind   { return KindManufacturer }
func (SerialNumber) Kind() Kind   { return KindSerialNumber }
func (RssiReading) Kind() Kind    { return KindSignal }
func (Location) Kind() Kind       { return KindLocation }
func (CellInfo) Kind() Kind       { return KindCellInfo }
func (NeighbourCells) Kind() Kind { return KindNeighbourCells }
func (a Ack) Kind() Kind          { return a.For }

func (m ModelInfo) String() string {
	return strings.Join(m.Fields, ",")
}

func (r RssiReading) String() string {
	return fmt.Sprintf("%d dBm", r.DBm)
}
