package instanceio

import (
	"fmt"
	"io"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// SolutionMeta carries the free-text header fields of the output format;
// the core solver never sees or produces these.
type SolutionMeta struct {
	InstanceName string
	Authors      string
	Date         string
	Reference    string
}

// WriteSolution writes sol in the text format consumed by an external
// validator: a free-text header followed by one "Route <i> : ..." line
// per route, 1-indexed, non-depot nodes only.
func WriteSolution(w io.Writer, meta SolutionMeta, sol *pdptw.Solution) error {
	if _, err := fmt.Fprintf(w, "Instance name : %s\n", meta.InstanceName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Authors       : %s\n", meta.Authors); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Date          : %s\n", meta.Date); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Reference     : %s\n", meta.Reference); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Solution"); err != nil {
		return err
	}
	for i, route := range sol.Routes {
		if _, err := fmt.Fprintf(w, "Route %d :", i+1); err != nil {
			return err
		}
		for _, node := range route.Stops {
			if _, err := fmt.Fprintf(w, " %d", node); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
