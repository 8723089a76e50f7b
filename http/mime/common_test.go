package mime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComplies(t *testing.T) {
	for _, tc := range []string{"", JSON, JSON + ";", JSON + ";param", "Application/JSON; charset=utf-8"} {
		require.True(t, Complies(JSON, tc))
	}

	require.False(t, Complies(JSON, XML))
}

func TestKinds(t *testing.T) {
	require.True(t, IsJSON("application/ld+json; charset=utf-8"))
	require.True(t, IsXML("application/atom+xml"))
	require.True(t, IsXML(" text/xml ;charset=utf-8"))
	require.True(t, IsForm("application/x-www-form-urlencoded; charset=UTF-8"))
	require.True(t, IsMultipart("multipart/form-data; boundary=XYZ"))
	require.False(t, IsJSON(Plain))
}

func TestStrip(t *testing.T) {
	require.Equal(t, JSON, Strip("\tApplication/JSON ; charset=utf-8"))
	require.Equal(t, Plain, Strip("text/plain"))
	require.Empty(t, Strip(" ; charset=utf-8"))
}
