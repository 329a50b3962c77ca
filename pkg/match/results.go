package match

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedResults is returned by ReadResults for input that does not
// follow the q/c line pairing.
var ErrMalformedResults = errors.New("malformed result file")

// WriteResults writes the candidate lists in the result file format:
//
//	q # <query serial>
//	c # <candidate serials...>
//
// Query serials are 1-based. A query without candidates gets a bare "c #".
func WriteResults(w io.Writer, results [][]int) error {
	bw := bufio.NewWriter(w)
	for qi, cands := range results {
		fmt.Fprintf(bw, "q # %d\n", qi+1)
		bw.WriteString("c #")
		for _, c := range cands {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(c))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadResults parses a result file. Query serials must run 1, 2, 3, ... and
// every q line must be followed by its c line.
func ReadResults(r io.Reader) ([][]int, error) {
	var (
		results [][]int
		pending bool
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != "#" {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrMalformedResults)
		}

		switch fields[0] {
		case "q":
			if pending || len(fields) != 3 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMalformedResults)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n != len(results)+1 {
				return nil, fmt.Errorf("line %d: unexpected query serial: %w", lineNo, ErrMalformedResults)
			}
			pending = true
		case "c":
			if !pending {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMalformedResults)
			}
			cands := make([]int, 0, len(fields)-2)
			for _, f := range fields[2:] {
				c, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, ErrMalformedResults)
				}
				cands = append(cands, c)
			}
			results = append(results, cands)
			pending = false
		default:
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrMalformedResults)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("missing candidate line for last query: %w", ErrMalformedResults)
	}
	return results, nil
}
