package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// dBm levels for the first field of a +CSQ reply, -113 dBm to -51 dBm.
var dbSteps = func() [32]int {
	var steps [32]int
	for i := range steps {
		steps[i] = -113 + 2*i
	}
	return steps
}()

// issiLength is the number of trailing digits of the TSI that form the ISSI.
const issiLength = 8

// CoordinateConverter converts a UTM position to WGS84 latitude and longitude.
type CoordinateConverter interface {
	ToLatLon(zone int, northern bool, easting, northing float64) (lat, lon float64, err error)
}

type parseFunc func(payloads []string) (Result, error)

// ResponseParser turns the accumulated data lines of a successful reply
// into a typed Result, one parse function per command kind.
type ResponseParser struct {
	converter CoordinateConverter
	table     map[Kind]parseFunc
}

// NewResponseParser returns a parser using conv for location replies.
func NewResponseParser(conv CoordinateConverter) *ResponseParser {
	p := &ResponseParser{converter: conv}
	p.table = map[Kind]parseFunc{
		KindIdentity:       parseIdentity,
		KindModel:          parseModel,
		KindManufacturer:   single(func(s string) Result { return Manufacturer(s) }),
		KindSerialNumber:   single(func(s string) Result { return SerialNumber(s) }),
		KindCharacterSet:   ack(KindCharacterSet),
		KindDisplayMessage: ack(KindDisplayMessage),
		KindSignal:         parseSignal,
		KindLocation:       p.parseLocation,
		KindCellInfo:       parseCellInfo,
		KindNeighbourCells: parseNeighbourCells,
	}
	return p
}

// Parse converts lines, as accumulated by the dispatcher for cmd, into the
// Result for cmd.Kind. Any mismatch is reported as a *ParseError carrying
// the raw lines.
func (p *ResponseParser) Parse(cmd Command, lines []string) (Result, error) {
	parse, ok := p.table[cmd.Kind]
	if !ok {
		return nil, parseErrorf(cmd.Kind, lines, "no parser for command %s", cmd.Verb)
	}

	payloads := make([]string, len(lines))
	for i, line := range lines {
		payloads[i] = cmd.payload(line)
	}

	res, err := parse(payloads)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, parseErrorf(cmd.Kind, lines, "%v", err)
	}
	return res, nil
}

func ack(kind Kind) parseFunc {
	return func([]string) (Result, error) {
		return Ack{For: kind}, nil
	}
}

// one returns the only payload of a single-record reply.
func one(payloads []string) (string, error) {
	switch len(payloads) {
	case 0:
		return "", errors.New("no data line in reply")
	case 1:
		return payloads[0], nil
	default:
		return "", fmt.Errorf("expected one data line, got %d", len(payloads))
	}
}

// fields splits a payload on commas and requires at least n fields.
func fields(payload string, n int) ([]string, error) {
	f := strings.Split(payload, ",")
	if len(f) < n {
		return nil, fmt.Errorf("expected at least %d fields, got %d", n, len(f))
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	return f, nil
}

func single(wrap func(string) Result) parseFunc {
	return func(payloads []string) (Result, error) {
		s, err := one(payloads)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, errors.New("empty value")
		}
		return wrap(s), nil
	}
}

// +CNUMF: <num type>,<TSI>
func parseIdentity(payloads []string) (Result, error) {
	s, err := one(payloads)
	if err != nil {
		return nil, err
	}
	f, err := fields(s, 2)
	if err != nil {
		return nil, err
	}
	tsi := f[1]
	if tsi == "" {
		return nil, errors.New("empty subscriber identity")
	}
	if len(tsi) > issiLength {
		tsi = tsi[len(tsi)-issiLength:]
	}
	return Issi(tsi), nil
}

// +GMM: <product>,<model>,<firmware>
func parseModel(payloads []string) (Result, error) {
	s, err := one(payloads)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, errors.New("empty model")
	}
	f, _ := fields(s, 1)
	return ModelInfo{Fields: f}, nil
}

// +CSQ: <rssi>,<ber>
func parseSignal(payloads []string) (Result, error) {
	s, err := one(payloads)
	if err != nil {
		return nil, err
	}
	f, err := fields(s, 1)
	if err != nil {
		return nil, err
	}
	idx, err := strconv.Atoi(f[0])
	if err != nil {
		return nil, fmt.Errorf("signal index %q: %w", f[0], err)
	}
	if idx < 0 || idx >= len(dbSteps) {
		return nil, fmt.Errorf("signal index %d out of range 0-%d", idx, len(dbSteps)-1)
	}
	return RssiReading{Index: idx, DBm: dbSteps[idx]}, nil
}

// +GPSPOS: <hhmmss>,<zone><hemisphere>,<easting>,<northing>,<satellites>
func (p *ResponseParser) parseLocation(payloads []string) (Result, error) {
	s, err := one(payloads)
	if err != nil {
		return nil, err
	}
	f, err := fields(s, 5)
	if err != nil {
		return nil, err
	}

	zone, northern, err := parseZone(f[1])
	if err != nil {
		return nil, err
	}
	easting, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return nil, fmt.Errorf("easting %q: %w", f[2], err)
	}
	northing, err := strconv.ParseFloat(f[3], 64)
	if err != nil {
		return nil, fmt.Errorf("northing %q: %w", f[3], err)
	}
	sats, err := strconv.Atoi(f[4])
	if err != nil {
		return nil, fmt.Errorf("satellite count %q: %w", f[4], err)
	}
	if f[0] == "" {
		return nil, errors.New("empty timestamp")
	}

	if p.converter == nil {
		return nil, errors.New("no coordinate converter configured")
	}
	lat, lon, err := p.converter.ToLatLon(zone, northern, easting, northing)
	if err != nil {
		return nil, fmt.Errorf("convert zone %d easting %.0f northing %.0f: %w", zone, easting, northing, err)
	}

	return Location{
		Latitude:   lat,
		Longitude:  lon,
		Satellites: sats,
		Timestamp:  f[0],
		Zone:       zone,
		Northern:   northern,
		Easting:    easting,
		Northing:   northing,
	}, nil
}

// parseZone splits "32N" into zone 32 and the northern hemisphere flag.
func parseZone(s string) (int, bool, error) {
	if len(s) < 2 {
		return 0, false, fmt.Errorf("zone %q too short", s)
	}
	var northern bool
	switch s[len(s)-1] {
	case 'N', 'n':
		northern = true
	case 'S', 's':
	default:
		return 0, false, fmt.Errorf("zone %q has no N/S hemisphere", s)
	}
	zone, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || zone < 1 || zone > 60 {
		return 0, false, fmt.Errorf("zone %q out of range 1-60", s)
	}
	return zone, northern, nil
}

// +CTBCT: <LA>,<service>,<security level>,<SDS-TL>
func parseCellInfo(payloads []string) (Result, error) {
	s, err := one(payloads)
	if err != nil {
		return nil, err
	}
	f, err := fields(s, 4)
	if err != nil {
		return nil, err
	}
	security, err := strconv.Atoi(f[2])
	if err != nil {
		return nil, fmt.Errorf("security level %q: %w", f[2], err)
	}
	var sdstl bool
	switch f[3] {
	case "0":
	case "1":
		sdstl = true
	default:
		return nil, fmt.Errorf("SDS-TL flag %q is not 0 or 1", f[3])
	}
	if f[0] == "" {
		return nil, errors.New("empty location area")
	}
	return CellInfo{
		LocationArea:  f[0],
		Service:       f[1],
		SecurityLevel: security,
		SDSTL:         sdstl,
	}, nil
}

// Every +GCLI line is one neighbour cell, in the order received.
func parseNeighbourCells(payloads []string) (Result, error) {
	if len(payloads) == 0 {
		return nil, errors.New("no neighbour cell records in reply")
	}
	cells := make(NeighbourCells, 0, len(payloads))
	for i, s := range payloads {
		if s == "" {
			return nil, fmt.Errorf("record %d is empty", i)
		}
		f, _ := fields(s, 1)
		cells = append(cells, NeighbourCell{Fields: f})
	}
	return cells, nil
}
