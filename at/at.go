// Package at holds the wire vocabulary of the AT command dialect spoken by
// TETRA terminals: line terminators, final result codes and a line splitter.
package at

const (
	// Terminal Control
	CR   = "\r"
	LF   = "\n"
	CRLF = "\r\n"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"
	EchoPrefix = "AT"

	// Unsolicited result codes from ETSI EN 300 392-5
	UrcSDSReceived   = "+CTSDSR:"
	UrcIncomingCall  = "+CTICN:"
	UrcCallReleased  = "+CTCR:"
	UrcTxGrant       = "+CTXG:"
	UrcTxCeased      = "+CDTXC:"
	UrcCallConnected = "+CTCC:"
	UrcCallProgress  = "+CTOCP:"
)

// MaxLineLength bounds a single received line. Terminals never emit more
// than a few hundred characters per line; anything longer is line noise.
const MaxLineLength = 4096

type ResponseType int

const (
	TypeSuccess ResponseType = iota // OK
	TypeFailure                     // ERROR, +CME ERROR, +CMS ERROR
	TypeURC                         // Asynchronous notifications
	TypeEcho                        // Command echo (ATE1)
	TypeData                        // Intermediate command output (+CSQ: ...)
)

func (t ResponseType) String() string {
	switch t {
	case TypeSuccess:
		return "success"
	case TypeFailure:
		return "failure"
	case TypeURC:
		return "urc"
	case TypeEcho:
		return "echo"
	default:
		return "data"
	}
}
