package typeschema

import "fmt"

// Diag carries non-fatal warnings produced while compiling.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

// Warning is a single diagnostic entry.
type Warning struct {
	Code    string
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Code + ": " + w.Message
	}
	return w.Code + " at " + w.Path + ": " + w.Message
}

// Diagnostics is the Diag implementation shared by the compiler front-ends.
type Diagnostics struct{ ws []Warning }

func (d *Diagnostics) HasWarnings() bool { return d != nil && len(d.ws) > 0 }

func (d *Diagnostics) Warnings() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.ws))
	for i, w := range d.ws {
		out[i] = w.String()
	}
	return out
}

// Entries returns a copy of the structured warnings.
func (d *Diagnostics) Entries() []Warning {
	if d == nil {
		return nil
	}
	return append([]Warning(nil), d.ws...)
}

// Warnf records a warning. It is a no-op on a nil receiver.
func (d *Diagnostics) Warnf(code, path, format string, args ...any) {
	if d == nil {
		return
	}
	d.ws = append(d.ws, Warning{Code: code, Path: path, Message: fmt.Sprintf(format, args...)})
}
