package server

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cityservices/api"
)

// Options are the command-line switches shared by the service binaries.
type Options struct {
	Spec     bool     // print the OpenAPI document and exit
	YAML     bool     // render the document as YAML
	Out      string   // write the document to this file instead of stdout
	Check    bool     // lint the document and exit
	EnvFiles []string // .env files to load
}

// Offline reports whether the command only renders or checks the document,
// in which case no database connection is made.
func (o Options) Offline() bool { return o.Spec || o.Check }

// Document runs the offline modes: -check lints the OpenAPI document and
// -spec writes it to stdout or to Out.
func Document(r *api.Router, o Options, stdout io.Writer) error {
	if o.Check {
		warnings, err := r.CheckSpec()
		for _, w := range warnings {
			if _, werr := fmt.Fprintln(stdout, "warning:", w); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
		if !o.Spec {
			_, err := fmt.Fprintln(stdout, "OpenAPI document is valid")
			return err
		}
	}

	w := stdout
	if o.Out != "" {
		f, err := os.Create(o.Out) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}

	if o.YAML {
		return r.WriteSpecYAML(w)
	}
	return r.WriteSpec(w)
}
