package match

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, [][]int{{1, 4, 9}, {}, {2}}); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	want := "q # 1\nc # 1 4 9\nq # 2\nc #\nq # 3\nc # 2\n"
	if buf.String() != want {
		t.Errorf("WriteResults() = %q, want %q", buf.String(), want)
	}
}

func TestReadResults(t *testing.T) {
	in := [][]int{{1, 4, 9}, {}, {2}}
	var buf bytes.Buffer
	if err := WriteResults(&buf, in); err != nil {
		t.Fatal(err)
	}

	got, err := ReadResults(&buf)
	if err != nil {
		t.Fatalf("ReadResults() error = %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("ReadResults() = %v, want %v", got, in)
	}
}

func TestReadResultsMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "candidate before query", input: "c # 1\n"},
		{name: "missing candidate line", input: "q # 1\n"},
		{name: "out of order serial", input: "q # 2\nc # 1\n"},
		{name: "double query", input: "q # 1\nq # 2\n"},
		{name: "bad candidate", input: "q # 1\nc # x\n"},
		{name: "unknown tag", input: "z # 1\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadResults(strings.NewReader(tc.input))
			if !errors.Is(err, ErrMalformedResults) {
				t.Errorf("error = %v, want ErrMalformedResults", err)
			}
		})
	}
}
