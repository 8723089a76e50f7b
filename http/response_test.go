package http

import (
	"testing"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/config"
	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/cookie"
	"github.com/indigo-web/message/http/status"
	"github.com/indigo-web/message/http/stream"
	"github.com/stretchr/testify/require"
)

func newBoundResponse(t *testing.T, p *env.Process) *Response {
	resp, err := NewResponse(config.Default()).WithHeader("X-Foo", "bar")
	require.NoError(t, err)
	_, err = resp.Body().Write([]byte("Hello"))
	require.NoError(t, err)

	bound, err := resp.BindToEnvironment(p)
	require.NoError(t, err)
	return bound
}

func TestResponse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.Default["Server"] = "indigo"

		resp := NewResponse(cfg)
		require.Equal(t, status.OK, resp.StatusCode())
		require.Equal(t, status.Status("OK"), resp.ReasonPhrase())
		require.Equal(t, "1.1", resp.ProtocolVersion())
		require.Equal(t, "indigo", resp.HeaderLine("server"))
		require.Equal(t, binding.Unbound, resp.IsStale())
		require.Empty(t, resp.Body().String())
	})

	t.Run("immutability", func(t *testing.T) {
		resp := NewResponse(config.Default())

		notFound, err := resp.WithStatus(status.NotFound)
		require.NoError(t, err)
		require.Equal(t, status.NotFound, notFound.StatusCode())
		require.Equal(t, status.Status("Not Found"), notFound.ReasonPhrase())
		require.Equal(t, status.OK, resp.StatusCode())

		custom, err := resp.WithStatus(status.OK, "Fine")
		require.NoError(t, err)
		require.Equal(t, status.Status("Fine"), custom.ReasonPhrase())

		withHeader, err := resp.WithAddedHeader("X-Foo", "1", "2")
		require.NoError(t, err)
		require.Equal(t, "1, 2", withHeader.HeaderLine("x-foo"))
		require.False(t, resp.HasHeader("X-Foo"))

		body := stream.FromString("Hello")
		withBody, err := resp.WithBody(body)
		require.NoError(t, err)
		require.Same(t, body, withBody.Body())
	})

	t.Run("no-op returns the receiver", func(t *testing.T) {
		resp := NewResponse(config.Default())

		same, err := resp.WithStatus(status.OK)
		require.NoError(t, err)
		require.Same(t, resp, same)

		same, err = resp.WithProtocolVersion("1.1")
		require.NoError(t, err)
		require.Same(t, resp, same)

		same, err = resp.WithoutHeader("X-Missing")
		require.NoError(t, err)
		require.Same(t, resp, same)

		same, err = resp.WithBody(resp.Body())
		require.NoError(t, err)
		require.Same(t, resp, same)
	})

	t.Run("cookies", func(t *testing.T) {
		resp, err := NewResponse(config.Default()).WithCookie(cookie.New("a", "1"))
		require.NoError(t, err)
		resp, err = resp.WithCookie(cookie.Build("b", "2").HttpOnly(true).Cookie())
		require.NoError(t, err)
		require.Equal(t, []string{"a=1", "b=2; HttpOnly"}, resp.Header("Set-Cookie"))

		_, err = resp.WithCookie(cookie.New("bad name", "1"))
		require.ErrorIs(t, err, errors.ErrInvalidCookie)
	})

	t.Run("validation", func(t *testing.T) {
		resp := NewResponse(config.Default())

		_, err := resp.WithStatus(42)
		require.ErrorIs(t, err, errors.ErrInvalidStatusCode)
		_, err = resp.WithProtocolVersion("3")
		require.ErrorIs(t, err, errors.ErrInvalidProtocol)
		_, err = resp.WithHeader("Bad Name", "x")
		require.ErrorIs(t, err, errors.ErrInvalidHeaderName)
		_, err = resp.WithHeader("X-Foo", "bad\r\nvalue")
		require.ErrorIs(t, err, errors.ErrInvalidHeaderValue)
	})

	t.Run("bind writes through", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		require.Equal(t, binding.Bound, bound.IsStale())
		require.Equal(t, []string{"X-Foo: bar"}, p.HeaderList())
		contents, err := p.ObContents()
		require.NoError(t, err)
		require.Equal(t, "Hello", contents)

		same, err := bound.BindToEnvironment(p)
		require.NoError(t, err)
		require.Same(t, bound, same)
	})

	t.Run("bound mirrors the environment", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		p.SetResponseCode(int(status.ServiceUnavailable))
		require.NoError(t, p.SetHeader("X-Side: channel", true, 0))
		_, err := p.Write([]byte(", world"))
		require.NoError(t, err)

		require.Equal(t, status.ServiceUnavailable, bound.StatusCode())
		require.Equal(t, "channel", bound.HeaderLine("X-Side"))
		require.Equal(t, "Hello, world", bound.Body().String())
	})

	t.Run("modification of bound turns it stale", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		next, err := bound.WithStatus(status.NotFound)
		require.NoError(t, err)
		require.Equal(t, binding.Bound, next.IsStale())
		require.Equal(t, binding.Stale, bound.IsStale())
		require.Equal(t, int(status.NotFound), p.ResponseCode())
		require.Equal(t, status.OK, bound.StatusCode())

		next, err = next.WithHeader("X-Foo", "baz")
		require.NoError(t, err)
		require.Equal(t, []string{"X-Foo: baz"}, p.HeaderList())

		_, err = next.Body().Write([]byte("!"))
		require.NoError(t, err)
		require.Equal(t, "Hello", bound.Body().String())
		require.Equal(t, "Hello!", next.Body().String())
	})

	t.Run("stale is an ordinary copy", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)
		_, err := bound.WithStatus(status.Created)
		require.NoError(t, err)

		modified, err := bound.WithHeader("X-Foo", "local")
		require.NoError(t, err)
		require.Equal(t, binding.Stale, modified.IsStale())
		require.Equal(t, "local", modified.HeaderLine("X-Foo"))
		require.Equal(t, []string{"X-Foo: bar"}, p.HeaderList())

		_, err = bound.BindToEnvironment(p)
		require.ErrorIs(t, err, errors.ErrStale)
	})

	t.Run("with body replaces the live buffer", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		next, err := bound.WithBody(stream.FromString("replaced"))
		require.NoError(t, err)
		contents, err := p.ObContents()
		require.NoError(t, err)
		require.Equal(t, "replaced", contents)
		require.Equal(t, "Hello", bound.Body().String())
		require.Equal(t, "replaced", next.Body().String())
	})

	t.Run("detach and revive", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		detached, err := bound.DetachFromEnvironment()
		require.NoError(t, err)
		require.Equal(t, binding.Bound, bound.IsStale())
		require.Equal(t, binding.Stale, detached.IsStale())

		same, err := detached.DetachFromEnvironment()
		require.NoError(t, err)
		require.Same(t, detached, same)

		p.RemoveHeader("")
		require.NoError(t, p.ObClean())
		require.Equal(t, "bar", detached.HeaderLine("X-Foo"))
		require.Equal(t, "Hello", detached.Body().String())

		revived, err := detached.Revive()
		require.NoError(t, err)
		require.Equal(t, binding.Bound, revived.IsStale())
		require.Equal(t, []string{"X-Foo: bar"}, p.HeaderList())
		contents, err := p.ObContents()
		require.NoError(t, err)
		require.Equal(t, "Hello", contents)

		same, err = revived.Revive()
		require.NoError(t, err)
		require.Same(t, revived, same)

		_, err = NewResponse(config.Default()).Revive()
		require.ErrorIs(t, err, errors.ErrNotBound)
	})

	t.Run("detach unbound", func(t *testing.T) {
		resp := NewResponse(config.Default())
		same, err := resp.DetachFromEnvironment()
		require.NoError(t, err)
		require.Same(t, resp, same)
		require.Equal(t, binding.Unbound, same.IsStale())
	})

	t.Run("headers sent", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)
		require.NoError(t, p.Finish())

		_, err := bound.WithHeader("X-Late", "1")
		require.ErrorIs(t, err, errors.ErrHeadersSent)
		_, err = bound.WithStatus(status.NotFound)
		require.ErrorIs(t, err, errors.ErrHeadersSent)
		require.Equal(t, binding.Bound, bound.IsStale())
	})

	t.Run("committed", func(t *testing.T) {
		p := env.NewProcess()
		bound := newBoundResponse(t, p)

		next, err := bound.WithStatus(status.Created)
		require.NoError(t, err)
		_, err = next.Body().Write([]byte(", world"))
		require.NoError(t, err)

		require.NoError(t, p.Finish())
		require.Equal(t, "HTTP/1.1 201 Created\r\nX-Foo: bar\r\n\r\nHello, world", p.Committed())
	})
}
