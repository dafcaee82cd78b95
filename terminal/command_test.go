package terminal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCommand(t *testing.T) {
	tt := []struct {
		kind   Kind
		verb   string
		prefix string
	}{
		{KindIdentity, "AT+CNUMF?", "+CNUMF:"},
		{KindModel, "AT+GMM?", "+GMM:"},
		{KindManufacturer, "AT+GMI?", "+GMI:"},
		{KindSerialNumber, "AT+GSN?", "+GSN:"},
		{KindSignal, "AT+CSQ?", "+CSQ:"},
		{KindLocation, "AT+GPSPOS?", "+GPSPOS:"},
		{KindCellInfo, "AT+CTBCT?", "+CTBCT:"},
		{KindNeighbourCells, "AT+GCLI?", "+GCLI:"},
	}

	for _, tc := range tt {
		t.Run(tc.kind.String(), func(t *testing.T) {
			cmd, err := QueryCommand(tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.verb, cmd.Verb)
			assert.Equal(t, []string{tc.prefix}, cmd.Prefixes)
			assert.Equal(t, "OK", cmd.Success)
			assert.Equal(t, "+CME ERROR:", cmd.Failure)
			assert.Empty(t, cmd.BenignCodes)
		})
	}

	_, err := QueryCommand(KindDisplayMessage)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestCommandMatch(t *testing.T) {
	cmd, err := QueryCommand(KindSignal)
	require.NoError(t, err)

	tt := []struct {
		line string
		want lineMatch
	}{
		{"OK", matchSuccess},
		{" OK ", matchSuccess},
		{"+CME ERROR: 34", matchFailure},
		{"ERROR", matchFailure},
		{"+CSQ: 12,99", matchData},
		{"+CTXG: 1,2", matchNoise},
		{"AT+CSQ?", matchNoise},
		{"OKAY", matchNoise},
	}
	for _, tc := range tt {
		assert.Equal(t, tc.want, cmd.match(tc.line), "line %q", tc.line)
	}
}

func TestCommandPayload(t *testing.T) {
	cmd, err := QueryCommand(KindCellInfo)
	require.NoError(t, err)
	assert.Equal(t, "1001,wide,2,1", cmd.payload("  +CTBCT:  1001,wide,2,1 "))
	assert.Equal(t, "unrelated", cmd.payload("unrelated"))
}

func TestDisplayMessageCommand(t *testing.T) {
	cmd, err := DisplayMessageCommand("RSSI: -85 dBm lagret", "Dekning", 5, 4)
	require.NoError(t, err)
	assert.Equal(t, `AT+MCDNTN="RSSI: -85 dBm lagret","Dekning",5,4`, cmd.Verb)
	assert.Equal(t, KindDisplayMessage, cmd.Kind)
	assert.True(t, cmd.benign(3))
	assert.False(t, cmd.benign(4))

	for _, bad := range []struct{ msg, title string }{
		{`say "hi"`, "t"},
		{"m", "two\nlines"},
		{"carriage\r", "t"},
	} {
		_, err := DisplayMessageCommand(bad.msg, bad.title, 5, 4)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	_, err = DisplayMessageCommand("m", "t", -1, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = DisplayMessageCommand("m", "t", 5, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCharacterSetCommand(t *testing.T) {
	cmd := CharacterSetCommand(CharsetUCS2)
	assert.Equal(t, "AT+CSCS=UCS2", cmd.Verb)
	assert.Equal(t, KindCharacterSet, cmd.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "location", KindLocation.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
