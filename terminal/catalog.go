package terminal

import "fmt"

// Error codes from ETSI EN 300 392-5. Codes from 100 upwards are
// manufacturer specific and deliberately absent.
var errorCatalog = map[int]string{
	3:  "Operation not allowed",
	4:  "Operation not supported",
	30: "No network service",
	33: "Parameter wrong type",
	34: "Parameter value out of range",
	35: "Syntax error",
	40: "Service not supported in DMO",
	50: "No GPS network service",
}

// CodeToMessage looks up a protocol error code.
func CodeToMessage(code int) (string, bool) {
	msg, ok := errorCatalog[code]
	return msg, ok
}

func newProtocolError(cmd Command, code int) *ProtocolError {
	msg, known := CodeToMessage(code)
	if !known {
		msg = fmt.Sprintf("unknown error code %d", code)
	}
	if hint, ok := cmd.Hints[code]; ok {
		msg = msg + " - " + hint
	}
	return &ProtocolError{
		Verb:    cmd.Verb,
		Code:    code,
		Message: msg,
		Known:   known,
	}
}
