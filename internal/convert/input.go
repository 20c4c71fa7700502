// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// EndSentinel terminates PlantUML text typed or piped on standard input.
const EndSentinel = "END"

// ReadSource collects lines from r until a line whose trimmed content equals
// sentinel, or EOF. Line endings are preserved; the sentinel line is not
// included.
func ReadSource(r io.Reader, sentinel string) (string, error) {
	br := bufio.NewReader(r)
	var b strings.Builder
	for {
		line, err := br.ReadString('\n')
		if line != "" && strings.TrimSpace(line) == sentinel {
			break
		}
		b.WriteString(line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
