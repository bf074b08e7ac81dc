// Package archive stores report exports in object storage.
package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrDisabled is returned by a nil or unconfigured sink.
var ErrDisabled = errors.New("report archive is not configured")

// Sink stores one named object and returns where it landed.
type Sink interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// ObjectName builds "<prefix>/<report>-<UTC timestamp>.csv".
func ObjectName(prefix, report string, at time.Time) string {
	name := report + "-" + at.UTC().Format("20060102T150405Z") + ".csv"
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
