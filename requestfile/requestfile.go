// Package requestfile reads the request files the simulator replays.
//
// A request file has exactly three lines:
//
//	<process address space size>
//	<number of frames>
//	<space separated page references>
//
// References outside [1, process size] are dropped rather than rejected.
package requestfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/pagesim/replacement"
)

const numLines = 3

// A Request is a parsed request file.
type Request struct {
	Name        string
	ProcessSize int
	MemorySize  int
	References  []replacement.Page

	// Dropped lists the references that fell outside the address space.
	Dropped []int
}

// ReadFile opens and parses the request file at path.
func ReadFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open request file: %w", err)
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse reads a request from r. The name is only used in errors and in the
// returned Request.
func Parse(name string, r io.Reader) (*Request, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("read request file %s: %w", name, err)
	}

	if len(lines) > numLines {
		return nil, errTooManyLines(name, len(lines))
	}

	processSize, err := parseSize(name, lines, 1, "process address space size")
	if err != nil {
		return nil, err
	}

	memorySize, err := parseSize(name, lines, 2, "RAM size")
	if err != nil {
		return nil, err
	}

	if len(lines) < 3 || strings.TrimSpace(lines[2]) == "" {
		return nil, errMissingLine(name, 3, "sequence of requests")
	}

	req := &Request{
		Name:        name,
		ProcessSize: processSize,
		MemorySize:  memorySize,
	}

	for _, field := range strings.Fields(lines[2]) {
		ref, err := strconv.Atoi(field)
		if err != nil {
			return nil, errBadNumber(name, 3, "page reference", err)
		}

		if ref < 1 || ref > processSize {
			req.Dropped = append(req.Dropped, ref)
			continue
		}

		req.References = append(req.References, replacement.Page(ref))
	}

	return req, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	return lines, scanner.Err()
}

func parseSize(name string, lines []string, line int, what string) (int, error) {
	if len(lines) < line || strings.TrimSpace(lines[line-1]) == "" {
		return 0, errMissingLine(name, line, what)
	}

	n, err := strconv.Atoi(strings.TrimSpace(lines[line-1]))
	if err != nil {
		return 0, errBadNumber(name, line, what, err)
	}

	return n, nil
}
