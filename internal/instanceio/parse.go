// Package instanceio reads the two textual PDPTW instance formats and
// writes the solution text format. It is a thin, narrow-interface shell
// around internal/pdptw.Instance: format detection and field layout live
// here, never inside the solver.
package instanceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// ParseInstance auto-detects the format of r and parses it into a
// pdptw.Instance. Detection: if the first non-empty line parses as three
// whitespace-separated integers, the file is Format-B; any other input is
// parsed as Format-A (NAME:/SIZE:/CAPACITY: header), without first checking
// for a SIZE: keyword.
func ParseInstance(name string, r io.Reader) (*pdptw.Instance, error) {
	br := bufio.NewReader(r)
	firstLine, err := firstNonEmptyLine(br)
	if err != nil {
		return nil, err
	}

	if isThreeInts(firstLine) {
		return parseFormatB(name, firstLine, br)
	}
	return parseFormatA(name, firstLine, br)
}

func firstNonEmptyLine(br *bufio.Reader) (string, error) {
	for {
		line, err := readLine(br)
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func isThreeInts(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

// parseFormatB parses the Li & Lim-style space-separated format: header
// line "n_customers capacity speed", then one row per node:
// "node x y demand ready due service pickup_index delivery_index".
func parseFormatB(name, header string, br *bufio.Reader) (*pdptw.Instance, error) {
	hf := strings.Fields(header)
	if len(hf) < 2 {
		return nil, fmt.Errorf("instanceio: malformed format-b header %q", header)
	}
	capacity, err := strconv.Atoi(hf[1])
	if err != nil {
		return nil, fmt.Errorf("instanceio: bad capacity: %w", err)
	}
	speed := 0.0
	if len(hf) >= 3 {
		speed, _ = strconv.ParseFloat(hf[2], 64)
	}

	var nodes []pdptw.Node
	var deliveryOf []int

	for {
		line, rerr := readLine(br)
		fields := strings.Fields(line)
		if len(fields) >= 9 {
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			demand, _ := strconv.Atoi(fields[3])
			ready, _ := strconv.Atoi(fields[4])
			due, _ := strconv.Atoi(fields[5])
			service, _ := strconv.Atoi(fields[6])
			deliveryCol, _ := strconv.Atoi(fields[8])

			nodes = append(nodes, pdptw.Node{X: x, Y: y, Demand: demand, Ready: ready, Due: due, Service: service})
			deliveryOf = append(deliveryOf, deliveryCol)
		}
		if rerr != nil {
			break
		}
	}

	return pdptw.NewInstanceWithPairs(name, capacity, nodes, nil, speed, deliveryOf)
}

// parseFormatA parses the keyword-header format: NAME:/SIZE:/CAPACITY:
// lines, a NODES section (id x y demand ready due service), and an EDGES
// section with the full distance matrix.
func parseFormatA(name, firstLine string, br *bufio.Reader) (*pdptw.Instance, error) {
	size := 0
	capacity := 0
	parsedName := name

	applyHeaderLine := func(line string) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return
		}
		key := strings.ToUpper(strings.TrimSuffix(fields[0], ":"))
		value := strings.Join(fields[1:], " ")
		switch key {
		case "NAME":
			parsedName = value
		case "SIZE":
			size, _ = strconv.Atoi(value)
		case "CAPACITY":
			capacity, _ = strconv.Atoi(value)
		}
	}

	if strings.TrimSpace(firstLine) != "NODES" {
		applyHeaderLine(firstLine)
		for {
			line, err := readLine(br)
			trimmed := strings.TrimSpace(line)
			if trimmed == "NODES" {
				break
			}
			applyHeaderLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("instanceio: format-a: NODES section not found")
			}
		}
	}

	nodes := make([]pdptw.Node, 0, size)
	for len(nodes) < size {
		line, err := readLine(br)
		fields := strings.Fields(line)
		if len(fields) >= 7 {
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			demand, _ := strconv.Atoi(fields[3])
			ready, _ := strconv.Atoi(fields[4])
			due, _ := strconv.Atoi(fields[5])
			service, _ := strconv.Atoi(fields[6])
			nodes = append(nodes, pdptw.Node{X: x, Y: y, Demand: demand, Ready: ready, Due: due, Service: service})
		}
		if err != nil {
			break
		}
	}

	for {
		line, err := readLine(br)
		if strings.TrimSpace(line) == "EDGES" {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("instanceio: format-a: EDGES section not found")
		}
	}

	dist := make([][]int, size)
	for i := 0; i < size; i++ {
		line, err := readLine(br)
		fields := strings.Fields(line)
		row := make([]int, 0, size)
		for _, f := range fields {
			v, convErr := strconv.Atoi(f)
			if convErr != nil {
				continue
			}
			row = append(row, v)
		}
		dist[i] = row
		if err != nil && i < size-1 {
			return nil, fmt.Errorf("instanceio: format-a: truncated EDGES section: %w", err)
		}
	}

	return pdptw.NewInstance(parsedName, capacity, nodes, dist, 0)
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
