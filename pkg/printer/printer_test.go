package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsForPaper(t *testing.T) {
	assert.Equal(t, 32, CharsForPaper(58))
	assert.Equal(t, 32, CharsForPaper(48))
	assert.Equal(t, 48, CharsForPaper(80))
	assert.Equal(t, 48, CharsForPaper(0))
}

func TestRowFitsWidth(t *testing.T) {
	d := NewDocument(32)
	got := d.formatRow([]Column{
		{Text: "Paracetamol 500mg strip", Weight: 3},
		{Text: "2", Weight: 1, AlignRight: true},
		{Text: "15.50", Weight: 1, AlignRight: true},
		{Text: "31.00", Weight: 1, AlignRight: true},
	})
	assert.Len(t, []rune(got), 32)
	assert.Equal(t, "Paracetamol 500m    2 15.5 31.00", got)
}

func TestKeyValuePadsToWidth(t *testing.T) {
	d := NewDocument(20)
	d.KeyValue("Total:", "236.00")
	out := d.Bytes()
	line := out[2 : len(out)-1] // strip ESC @ and LF
	assert.Equal(t, "Total:        236.00", string(line))
}

func TestTextSkipsEmpty(t *testing.T) {
	d := NewDocument(32)
	before := len(d.Bytes())
	d.Text("")
	assert.Len(t, d.Bytes(), before)
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, p.Kind())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("serial", "", "")
	assert.Error(t, err)
}

func TestUSBPrinterWritesDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p := NewUSBPrinter(path)
	assert.True(t, p.Connected(context.Background()))
	require.NoError(t, p.Print(context.Background(), []byte("receipt")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(got))
}

func TestNetworkPrinterSendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, conn)
		received <- buf.Bytes()
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), []byte{ESC, '@'}))
	assert.Equal(t, []byte{ESC, '@'}, <-received)
}
