package util

import (
	"bufio"
	"io"
	"strings"
)

func ReadLines(r io.Reader) []string {
	buf := bufio.NewReader(r)
	lines := make([]string, 0)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			Fatalf("Could not read line: %s.", err)
		}
		lines = append(lines, strings.TrimSpace(line))
		if err == io.EOF {
			break
		}
	}
	return lines
}

// ReadList reads one name per line from path. Blank lines and everything
// after a '#' are ignored.
func ReadList(path string) []string {
	f := OpenFile(path)
	defer f.Close()

	var names []string
	for _, line := range ReadLines(f) {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); len(line) > 0 {
			names = append(names, line)
		}
	}
	return names
}
