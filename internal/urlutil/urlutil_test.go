package urlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	u, err := Parse("danejoe://example.com:9090/files/report.pdf?version=1")
	require.NoError(t, err)
	require.Equal(t, SchemeDaneJoe, u.Scheme)
	require.Equal(t, "example.com", u.Host)
	require.Equal(t, uint16(9090), u.Port)
	require.Equal(t, "/files/report.pdf", u.Path)
	require.Equal(t, []string{"1"}, u.Query["version"])
}

func TestParseNoPort(t *testing.T) {
	u, err := Parse("danejoe://example.com/echo")
	require.NoError(t, err)
	require.Equal(t, "example.com", u.Host)
	require.Equal(t, uint16(0), u.Port)
}

func TestParseUnknownSchemeFallsBack(t *testing.T) {
	u, err := Parse("ftp://host/path")
	require.NoError(t, err)
	require.Equal(t, SchemeUnknown, u.Scheme)
	require.Equal(t, "host", u.Host)
}

func TestParseMissingSchemeSeparatorIsError(t *testing.T) {
	_, err := Parse("not-a-url")
	require.Error(t, err)
}

func TestParseMultiValuedQuery(t *testing.T) {
	u, err := Parse("danejoe://h/p?a=1&a=2&b=3")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, u.Query["a"])
	require.Equal(t, []string{"3"}, u.Query["b"])
}

func TestStringRoundTrip(t *testing.T) {
	u, err := Parse("danejoe://example.com:9090/files/report.pdf?version=1")
	require.NoError(t, err)
	require.Equal(t, "danejoe://example.com:9090/files/report.pdf?version=1", u.String())
}

func TestGetParamReturnsOneMatchingValue(t *testing.T) {
	u, err := Parse("danejoe://h/p?a=1&a=2")
	require.NoError(t, err)

	v, ok := u.GetParam("a")
	require.True(t, ok)
	require.Contains(t, []string{"1", "2"}, v)

	_, ok = u.GetParam("missing")
	require.False(t, ok)
}

func TestDefaultPort(t *testing.T) {
	require.Equal(t, uint16(7700), DefaultPort(SchemeDaneJoe))
	require.Equal(t, uint16(0), DefaultPort(SchemeFile))
	require.Equal(t, uint16(0), DefaultPort(SchemeUnknown))
}
