package terminal_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"i4.energy/across/tetracov/at"
	"i4.energy/across/tetracov/terminal"
)

func readLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-lines:
		require.True(t, ok, "line stream closed")
		return line
	case <-time.After(time.Second):
		t.Fatal("no line received")
		return ""
	}
}

func TestChannelLinesSkipsBlankLines(t *testing.T) {
	tr := terminal.NewTestTransport()
	ch := terminal.NewChannel(tr, nil)
	defer ch.Close()

	tr.SendData("\r\n+CSQ: 12,99\r\n\r\nOK\r\n")
	lines := ch.Lines()
	assert.Equal(t, "+CSQ: 12,99", readLine(t, lines))
	assert.Equal(t, "OK", readLine(t, lines))
}

func TestChannelLinesAcrossReads(t *testing.T) {
	tr := terminal.NewTestTransport()
	ch := terminal.NewChannel(tr, nil)
	defer ch.Close()

	lines := ch.Lines()
	tr.SendData("+GMI: MOTO")
	tr.SendData("ROLA\r")
	tr.SendData("\nOK\r\n")
	assert.Equal(t, "+GMI: MOTOROLA", readLine(t, lines))
	assert.Equal(t, "OK", readLine(t, lines))
}

func TestChannelWriteLineAppendsCR(t *testing.T) {
	tr := terminal.NewTestTransport()
	ch := terminal.NewChannel(tr, nil)
	defer ch.Close()

	require.NoError(t, ch.WriteLine("AT+CSQ?"))
	assert.Equal(t, "AT+CSQ?\r", <-tr.Written())
}

func TestChannelShortWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := terminal.NewMockTransport(ctrl)
	tr.EXPECT().Write([]byte("AT+GMI?\r")).Return(3, nil)

	ch := terminal.NewChannel(tr, nil)
	assert.ErrorIs(t, ch.WriteLine("AT+GMI?"), io.ErrShortWrite)
}

func TestChannelEndsOnEOF(t *testing.T) {
	tr := terminal.NewTestTransport()
	ch := terminal.NewChannel(tr, nil)
	lines := ch.Lines()

	require.NoError(t, ch.Close())
	for range lines {
	}
	<-ch.Done()
	assert.ErrorIs(t, ch.Err(), terminal.ErrChannelClosed)
	assert.ErrorIs(t, ch.WriteLine("AT"), terminal.ErrChannelClosed)
	assert.ErrorIs(t, ch.Close(), terminal.ErrAlreadyClosed)
}

func TestChannelLineTooLong(t *testing.T) {
	tr := terminal.NewTestTransport()
	ch := terminal.NewChannel(tr, nil)
	defer ch.Close()

	lines := ch.Lines()
	tr.SendData(strings.Repeat("A", at.MaxLineLength+1))
	for range lines {
	}
	err := ch.Err()
	assert.ErrorIs(t, err, terminal.ErrChannelClosed)
	assert.ErrorIs(t, err, terminal.ErrLineTooLong)
}

func TestChannelReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := terminal.NewMockTransport(ctrl)
	boom := errors.New("usb disconnected")
	tr.EXPECT().Read(gomock.Any()).Return(0, boom)

	ch := terminal.NewChannel(tr, nil)
	for range ch.Lines() {
	}
	assert.ErrorIs(t, ch.Err(), boom)
	assert.ErrorIs(t, ch.Err(), terminal.ErrChannelClosed)
}
