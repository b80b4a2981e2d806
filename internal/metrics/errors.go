package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// DataShapeError reports a feed that cannot support the requested
// computation. It points at the upstream data, not at the query.
type DataShapeError struct {
	Shape   string
	Missing []Column
	Reason  string
}

func (e *DataShapeError) Error() string {
	var sb strings.Builder
	sb.WriteString("data shape error")
	if e.Shape != "" {
		fmt.Fprintf(&sb, " (%s)", e.Shape)
	}
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, c := range e.Missing {
			names[i] = string(c)
		}
		fmt.Fprintf(&sb, ": missing columns %s", strings.Join(names, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&sb, ": %s", e.Reason)
	}
	return sb.String()
}

// IsDataShapeError reports whether err is or wraps a *DataShapeError.
func IsDataShapeError(err error) bool {
	var dse *DataShapeError
	return errors.As(err, &dse)
}
