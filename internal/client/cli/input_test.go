package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	assert.Error(t, err)
}

func TestGetFields(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "unix newlines, stop on empty line",
			input: "display_name=Alice\nemail=a@x.io\n\nignored=1\n",
			want:  map[string]string{"display_name": "Alice", "email": "a@x.io"},
		},
		{
			name:  "windows CRLF",
			input: "a=1\r\nb=2\r\n\r\n",
			want:  map[string]string{"a": "1", "b": "2"},
		},
		{
			name:  "empty value clears",
			input: "email=\n\n",
			want:  map[string]string{"email": ""},
		},
		{
			name:  "EOF without trailing blank line",
			input: "a=1\nb = 2 ",
			want:  map[string]string{"a": "1", "b": "2"},
		},
		{
			name:  "immediate blank line",
			input: "\n",
			want:  map[string]string{},
		},
		{
			name:    "missing separator",
			input:   "oops\n\n",
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   "=x\n\n",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetFields(rdr(tc.input), "Fields", &out)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
