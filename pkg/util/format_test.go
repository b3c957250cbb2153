package util

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "x", OrDash("x"))
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in), "FormatCount(%d)", tt.in)
	}
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Hour, "1h"},
		{5 * time.Minute, "5m"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 30*time.Minute, "1h30m"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatInterval(tt.in), "FormatInterval(%s)", tt.in)
	}
}

func TestPrintPrettyJSON(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	t.Cleanup(func() {
		os.Stdout = oldStdout
	})

	err := PrintPrettyJSON(struct {
		Total int `json:"total"`
	}{Total: 12})
	require.NoError(t, err)

	w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	assert.Equal(t, "{\n  \"total\": 12\n}\n", buf.String())
}

func TestPrintPrettyJSON_UnsupportedValue(t *testing.T) {
	err := PrintPrettyJSON(make(chan int))
	assert.Error(t, err)
}
