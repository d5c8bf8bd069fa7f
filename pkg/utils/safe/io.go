// Package safe wraps I/O calls whose errors can only be logged, typically
// deferred closes and writes to an HTTP response that is already committed.
package safe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"syscall"

	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// Close closes c and logs a failure. A nil closer and an already closed
// resource are ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	err := c.Close()
	if err == nil || errors.Is(err, os.ErrClosed) || errors.Is(err, net.ErrClosed) {
		return
	}
	logging.From(ctx).Warn("close failed",
		slog.String("resource", fmt.Sprintf("%T", c)),
		slog.Any("error", err),
	)
}

// Write writes data to w. A peer that hung up is logged at debug level only.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logFailure(ctx, "write", err, int64(n), int64(len(data)))
	}
}

// Copy copies src into dst and returns the number of bytes copied
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	if dst == nil || src == nil {
		return 0
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		logFailure(ctx, "copy", err, n, -1)
	}
	return n
}

func logFailure(ctx context.Context, op string, err error, done, total int64) {
	logger := logging.From(ctx).With(
		slog.String("op", op),
		slog.Int64("bytes", done),
	)
	if total >= 0 {
		logger = logger.With(slog.Int64("size", total))
	}

	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		logger.Debug("peer closed connection", slog.Any("error", err))
		return
	}
	logger.Warn("io failed", slog.Any("error", err))
}
