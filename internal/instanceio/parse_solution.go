package instanceio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// ParseSolution reads the text output format back into a Solution and its
// header metadata; its caller in this repository is the round-trip test.
func ParseSolution(r io.Reader) (SolutionMeta, *pdptw.Solution, error) {
	var meta SolutionMeta
	sol := &pdptw.Solution{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		field := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch {
		case field == "Instance name":
			meta.InstanceName = value
		case field == "Authors":
			meta.Authors = value
		case field == "Date":
			meta.Date = value
		case field == "Reference":
			meta.Reference = value
		case strings.HasPrefix(field, "Route"):
			var stops []int
			for _, tok := range strings.Fields(value) {
				n, err := strconv.Atoi(tok)
				if err != nil {
					continue
				}
				stops = append(stops, n)
			}
			sol.Routes = append(sol.Routes, pdptw.Route{Stops: stops})
		}
	}
	if err := scanner.Err(); err != nil {
		return meta, nil, err
	}
	return meta, sol, nil
}
