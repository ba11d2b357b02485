package harness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/fmuharness/internal/engine"
)

// DumpSeparator separates the fields of one dumped sample.
const DumpSeparator = ";"

const (
	markerBegin = "---begin_of_"
	markerEnd   = "---end_of_"
	markerTail  = "_results---"
)

// ErrNoDump is returned by ReadDump when no begin marker is found.
var ErrNoDump = errors.New("harness: no dump section")

// BeginMarker returns the line that opens a dump tagged tag.
func BeginMarker(tag string) string { return markerBegin + tag + markerTail }

// EndMarker returns the line that closes a dump tagged tag.
func EndMarker(tag string) string { return markerEnd + tag + markerTail }

// WriteDump writes every sample between the tag's markers and returns the
// number of rows written.
func WriteDump(w io.Writer, tag string, sol *engine.Solution) (int, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, BeginMarker(tag))
	for _, s := range sol.Samples {
		fmt.Fprintln(bw, s.Join(DumpSeparator))
	}
	fmt.Fprintln(bw, EndMarker(tag))
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write dump: %w", err)
	}
	return sol.Len(), nil
}

// ReadDump extracts the samples of the first dump section in r. An empty
// tag accepts any tag. Lines outside the section are ignored.
func ReadDump(r io.Reader, tag string) ([]engine.Sample, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		inside  bool
		endLine string
		samples []engine.Sample
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")

		if !inside {
			found, ok := beginTag(line)
			if ok && (tag == "" || found == tag) {
				inside = true
				endLine = EndMarker(found)
				samples = []engine.Sample{}
			}
			continue
		}

		if line == endLine {
			return samples, nil
		}
		sample, err := parseDumpLine(line)
		if err != nil {
			return nil, fmt.Errorf("dump line %d: %w", lineNo, err)
		}
		samples = append(samples, sample)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	if !inside {
		if tag == "" {
			return nil, ErrNoDump
		}
		return nil, fmt.Errorf("%w: tag %q", ErrNoDump, tag)
	}
	return nil, fmt.Errorf("dump section not terminated by %q", endLine)
}

func beginTag(line string) (string, bool) {
	if !strings.HasPrefix(line, markerBegin) || !strings.HasSuffix(line, markerTail) {
		return "", false
	}
	tag := line[len(markerBegin) : len(line)-len(markerTail)]
	if tag == "" {
		return "", false
	}
	return tag, true
}

func parseDumpLine(line string) (engine.Sample, error) {
	fields := strings.Split(line, DumpSeparator)
	sample := make(engine.Sample, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		sample[i] = v
	}
	return sample, nil
}
