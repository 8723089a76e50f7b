// Package emit writes responses into the output channel of the environment.
package emit

import (
	"fmt"
	"io"

	"github.com/indigo-web/message/config"
	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http"
	"github.com/indigo-web/message/http/stream"
	"github.com/sirupsen/logrus"
)

type Emitter struct {
	logger  logrus.FieldLogger
	metrics *Metrics
}

// New returns an emitter logging into the logger of the config. Metrics may be nil.
func New(cfg *config.Config, metrics *Metrics) *Emitter {
	return &Emitter{
		logger:  cfg.Logger,
		metrics: metrics,
	}
}

// Emit writes the status line and headers of the response, followed by its body. Multi-value
// headers are emitted one line per value. Fails if headers were already committed, as
// there's nothing to be done about them anymore.
//
// Bodies which already are the global sink of the environment aren't copied, as their
// content is in the output buffer already. Committing the output buffer is up to the host.
func (e *Emitter) Emit(resp *http.Response, out env.Response) error {
	if sent, file, line := out.HeadersSent(); sent {
		return fmt.Errorf("%w: output started at %s:%d", errors.ErrHeadersSent, file, line)
	}

	code := int(resp.StatusCode())
	statusLine := fmt.Sprintf("HTTP/%s %d %s", resp.ProtocolVersion(), code, resp.ReasonPhrase())
	if err := out.SetHeader(statusLine, true, code); err != nil {
		return err
	}

	for _, header := range resp.Headers() {
		for i, value := range header.Values {
			if err := out.SetHeader(header.Name+": "+value, i == 0, 0); err != nil {
				return err
			}
		}
	}

	written, err := e.emitBody(resp.Body(), out)
	if err != nil {
		return err
	}

	e.metrics.save(code, written)
	e.logger.WithFields(logrus.Fields{
		"code":    code,
		"headers": len(resp.Headers()),
		"written": written,
	}).Debug("response emitted")

	return nil
}

func (e *Emitter) emitBody(body stream.Stream, out io.Writer) (int64, error) {
	if output, ok := body.(*stream.Output); ok && output.IsGlobal() {
		size, err := output.Size()
		if err != nil {
			e.logger.WithError(err).Warn("unable to measure the global output buffer")
			return 0, nil
		}

		return size, nil
	}

	if body.Seekable() {
		if err := body.Rewind(); err != nil {
			return 0, err
		}
	}

	if !body.Readable() {
		return 0, errors.ErrNotReadable
	}

	return io.Copy(out, body)
}
