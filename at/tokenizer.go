package at

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

var urcPrefixes = []string{
	UrcSDSReceived,
	UrcIncomingCall,
	UrcCallReleased,
	UrcTxGrant,
	UrcTxCeased,
	UrcCallConnected,
	UrcCallProgress,
}

// Splitter is used for tokenizing terminal output. It uses the signature of
// bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// Terminals end lines with CRLF, but echoed commands and some firmware
// revisions only send a bare CR or LF. Any of them ends a token, so a CRLF
// pair yields an empty token which callers are expected to skip.
//
// When atEOF is true any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, CRLF); i >= 0 {
		return i + 1, data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Classify identifies the nature of a received line independently of the
// command that is in flight.
func Classify(line string) ResponseType {
	line = strings.TrimSpace(line)

	switch line {
	case OK:
		return TypeSuccess
	case ERROR, NoCarrier:
		return TypeFailure
	}

	switch {
	case strings.HasPrefix(line, CmeError), strings.HasPrefix(line, CmsError):
		return TypeFailure
	case strings.HasPrefix(line, EchoPrefix):
		return TypeEcho
	}

	for _, p := range urcPrefixes {
		if strings.HasPrefix(line, p) {
			return TypeURC
		}
	}
	return TypeData
}

// IsFinal reports whether line terminates a reply, successfully or not.
func IsFinal(line string) bool {
	switch Classify(line) {
	case TypeSuccess, TypeFailure:
		return true
	}
	return false
}

// ParseCmeError extracts the numeric code from a "+CME ERROR:<code>" line.
// Leading zeros and whitespace around the code are accepted.
func ParseCmeError(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, CmeError) {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(line[len(CmeError):]))
	if err != nil || code < 0 {
		return 0, false
	}
	return code, true
}
