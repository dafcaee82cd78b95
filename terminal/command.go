package terminal

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"i4.energy/across/tetracov/at"
)

// Kind names the operation a Command performs. Each kind has exactly one
// response parser.
type Kind int

const (
	KindIdentity Kind = iota
	KindModel
	KindManufacturer
	KindSerialNumber
	KindCharacterSet
	KindDisplayMessage
	KindSignal
	KindLocation
	KindCellInfo
	KindNeighbourCells
)

var kindNames = map[Kind]string{
	KindIdentity:       "identity",
	KindModel:          "model",
	KindManufacturer:   "manufacturer",
	KindSerialNumber:   "serial number",
	KindCharacterSet:   "character set",
	KindDisplayMessage: "display message",
	KindSignal:         "signal reading",
	KindLocation:       "location",
	KindCellInfo:       "cell info",
	KindNeighbourCells: "neighbour cells",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command describes one request/response exchange. Commands are built per
// call by the constructors below and are not modified afterwards.
type Command struct {
	Kind Kind
	// Verb is the wire string without line terminator.
	Verb string
	// Prefixes lists the data-line prefixes that belong to the reply.
	Prefixes []string
	// Success is the line that settles the request successfully.
	Success string
	// Failure is the prefix of the line that settles it with a protocol error.
	Failure string
	// Timeout overrides the dispatcher default when non-zero.
	Timeout time.Duration
	// BenignCodes are error codes that settle as success for this command.
	BenignCodes []int
	// Hints add command specific context to error catalog messages.
	Hints map[int]string
}

type lineMatch int

const (
	matchNoise lineMatch = iota
	matchData
	matchSuccess
	matchFailure
)

func (c Command) match(line string) lineMatch {
	line = strings.TrimSpace(line)
	switch {
	case line == c.Success:
		return matchSuccess
	case c.Failure != "" && strings.HasPrefix(line, c.Failure):
		return matchFailure
	case c.Failure != "" && line == at.ERROR:
		// Terminals with +CMEE disabled report errors without a code.
		return matchFailure
	}
	for _, p := range c.Prefixes {
		if strings.HasPrefix(line, p) {
			return matchData
		}
	}
	return matchNoise
}

// payload strips the recognised prefix and surrounding blanks from a data line.
func (c Command) payload(line string) string {
	line = strings.TrimSpace(line)
	for _, p := range c.Prefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

func (c Command) benign(code int) bool {
	return slices.Contains(c.BenignCodes, code)
}

func (c Command) String() string {
	return c.Verb
}

type querySpec struct {
	verb   string
	prefix string
}

var queries = map[Kind]querySpec{
	KindIdentity:       {verb: "AT+CNUMF?", prefix: "+CNUMF:"},
	KindModel:          {verb: "AT+GMM?", prefix: "+GMM:"},
	KindManufacturer:   {verb: "AT+GMI?", prefix: "+GMI:"},
	KindSerialNumber:   {verb: "AT+GSN?", prefix: "+GSN:"},
	KindSignal:         {verb: "AT+CSQ?", prefix: "+CSQ:"},
	KindLocation:       {verb: "AT+GPSPOS?", prefix: "+GPSPOS:"},
	KindCellInfo:       {verb: "AT+CTBCT?", prefix: "+CTBCT:"},
	KindNeighbourCells: {verb: "AT+GCLI?", prefix: "+GCLI:"},
}

// Code 3 on a GPS query almost always means the receiver is switched off.
var locationHints = map[int]string{
	3: "GPS is disabled",
}

// QueryCommand returns the read command for one of the query kinds.
func QueryCommand(kind Kind) (Command, error) {
	q, ok := queries[kind]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s is not a query", ErrInvalidArgument, kind)
	}
	cmd := Command{
		Kind:     kind,
		Verb:     q.verb,
		Prefixes: []string{q.prefix},
		Success:  at.OK,
		Failure:  at.CmeError,
	}
	if kind == KindLocation {
		cmd.Hints = locationHints
	}
	return cmd, nil
}

// CharacterSetCommand selects the character set used for string parameters.
func CharacterSetCommand(charset string) Command {
	return Command{
		Kind:    KindCharacterSet,
		Verb:    "AT+CSCS=" + charset,
		Success: at.OK,
		Failure: at.CmeError,
	}
}

// DisplayMessageCommand shows a notification on the terminal screen for
// timeout seconds. Message and title are put on the wire verbatim, so they
// must already be encoded for the active character set.
//
// Code 3 (operation not allowed) is reported when the terminal keypad is
// locked; the message is then simply not shown and the request succeeds.
func DisplayMessageCommand(message, title string, timeout, icon int) (Command, error) {
	for _, s := range []string{message, title} {
		if strings.ContainsAny(s, "\"\r\n") {
			return Command{}, fmt.Errorf("%w: display text %q contains a quote or line break", ErrInvalidArgument, s)
		}
	}
	if timeout < 0 || icon < 0 {
		return Command{}, fmt.Errorf("%w: negative timeout or icon", ErrInvalidArgument)
	}
	return Command{
		Kind:        KindDisplayMessage,
		Verb:        fmt.Sprintf(`AT+MCDNTN="%s","%s",%d,%d`, message, title, timeout, icon),
		Success:     at.OK,
		Failure:     at.CmeError,
		BenignCodes: []int{3},
	}, nil
}
