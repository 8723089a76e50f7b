package cookie

import (
	"testing"
	"time"

	"github.com/indigo-web/message/errors"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("single pair", func(t *testing.T) {
		for _, data := range []string{"a=b", "a=b;", "a=b; "} {
			jar, err := Parse(data)
			require.NoError(t, err)
			require.Equal(t, map[string]string{"a": "b"}, jar)
		}
	})

	t.Run("multiple pairs", func(t *testing.T) {
		jar, err := Parse(`hello=world; men=in black; quoted="value"`)
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"hello":  "world",
			"men":    "in black",
			"quoted": "value",
		}, jar)
	})

	t.Run("empty", func(t *testing.T) {
		jar, err := Parse("")
		require.NoError(t, err)
		require.Empty(t, jar)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse("=value")
		require.ErrorIs(t, err, errors.ErrMalformedCookie)
		_, err = Parse("a=b; garbage")
		require.ErrorIs(t, err, errors.ErrMalformedCookie)
	})
}

func TestCookie(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		require.Equal(t, "session=abc", New("session", "abc").String())
	})

	t.Run("every attribute", func(t *testing.T) {
		c := Build("session", "abc").
			Path("/").
			Domain("example.com").
			Expires(time.Date(2015, time.October, 21, 7, 28, 0, 0, time.UTC)).
			MaxAge(3600).
			SameSite(SameSiteStrict).
			Secure(true).
			HttpOnly(true).
			Cookie()

		require.Equal(t,
			"session=abc; Path=/; Domain=example.com; Expires=Wed, 21 Oct 2015 07:28:00 GMT; "+
				"Max-Age=3600; SameSite=Strict; Secure; HttpOnly",
			c.String(),
		)
	})

	t.Run("negative max age", func(t *testing.T) {
		require.Equal(t, "a=; Max-Age=0", Build("a", "").MaxAge(-1).Cookie().String())
	})

	t.Run("validate", func(t *testing.T) {
		require.NoError(t, New("a", "b").Validate())
		require.ErrorIs(t, New("", "b").Validate(), errors.ErrInvalidCookie)
		require.ErrorIs(t, New("a;b", "c").Validate(), errors.ErrInvalidCookie)
		require.ErrorIs(t, New("a", "b c").Validate(), errors.ErrInvalidCookie)
		require.ErrorIs(t, New("a", "b\r\n").Validate(), errors.ErrInvalidCookie)
	})
}
