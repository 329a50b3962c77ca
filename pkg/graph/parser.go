package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrUnknownToken is returned for a non-blank line that does not start with t, #, v or e.
	ErrUnknownToken = errors.New("unknown leading token")
	// ErrUndeclaredNode is returned when an edge references a node id that was never declared.
	ErrUndeclaredNode = errors.New("edge references undeclared node")
	// ErrMalformedLine is returned for v/e lines with missing fields or invalid node ids.
	ErrMalformedLine = errors.New("malformed line")
)

// ParseError reports the first structural problem found in a graph database.
type ParseError struct {
	Line   int    // 1-based line number
	Text   string // offending line, trimmed
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// ReadFile parses the graph database stored at path.
func ReadFile(path string) ([]*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database: %w", err)
	}
	defer f.Close()

	graphs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return graphs, nil
}

// Parse reads a stream of graph records:
//
//	t # <id>            (or "# <id>", "t <id>", bare "t")
//	v <node_id> <label>
//	e <node_a> <node_b> <edge_label>
//
// Records end at the next graph-start line or at end of input. Blank lines are
// skipped. v/e lines that appear before any start line open an implicit graph.
// The first malformed line aborts parsing with a *ParseError.
func Parse(r io.Reader) ([]*Graph, error) {
	var (
		graphs []*Graph
		cur    *Graph
		lineNo int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	fail := func(text string, reason error) error {
		return &ParseError{Line: lineNo, Text: text, Reason: reason}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "t", "#":
			if cur != nil {
				graphs = append(graphs, cur)
			}
			cur = New(recordID(parts, len(graphs)))

		case "v":
			if len(parts) < 3 {
				return nil, fail(line, ErrMalformedLine)
			}
			id, err := parseNodeID(parts[1])
			if err != nil {
				return nil, fail(line, err)
			}
			if cur == nil {
				cur = New(strconv.Itoa(len(graphs)))
			}
			cur.AddNode(id, parts[2])

		case "e":
			if len(parts) < 4 {
				return nil, fail(line, ErrMalformedLine)
			}
			a, err := parseNodeID(parts[1])
			if err != nil {
				return nil, fail(line, err)
			}
			b, err := parseNodeID(parts[2])
			if err != nil {
				return nil, fail(line, err)
			}
			if cur == nil {
				cur = New(strconv.Itoa(len(graphs)))
			}
			if err := cur.AddEdge(a, b, parts[3]); err != nil {
				return nil, fail(line, ErrUndeclaredNode)
			}

		default:
			return nil, fail(line, ErrUnknownToken)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read graph database: %w", err)
	}

	if cur != nil {
		graphs = append(graphs, cur)
	}
	return graphs, nil
}

// recordID extracts the id from a graph-start line. "t # 7" and "# 7" and
// "t 7" all yield "7". A lone "t #" keeps "#" as its id, and a bare marker
// falls back to the record index. Ids are labels only; result files use
// serials.
func recordID(parts []string, index int) string {
	switch {
	case len(parts) > 2 && parts[1] == "#":
		return parts[2]
	case len(parts) > 1:
		return parts[1]
	default:
		return strconv.Itoa(index)
	}
}

func parseNodeID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, ErrMalformedLine
	}
	return id, nil
}
