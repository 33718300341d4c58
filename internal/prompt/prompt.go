// Package prompt asks the operator for the building and device names on a
// line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/locojk/CSV-converter/internal/util"
)

type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// AskBuilding asks once for the building name. Pressing Enter accepts
// defaultName when it is set; otherwise the question repeats until a
// non-blank answer arrives.
func (c *Console) AskBuilding(defaultName string) (string, error) {
	question := "Enter Building name (applies to all files)"
	if defaultName != "" {
		question += fmt.Sprintf(" [%s]", defaultName)
	}
	for {
		fmt.Fprintf(c.out, "%s: ", question)
		answer, err := c.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = defaultName
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(c.out, "Building name cannot be empty. Please enter a value.")
	}
}

func (c *Console) AskDeviceName(key, source string) (string, error) {
	for {
		fmt.Fprintf(c.out, "Enter Device Name for %s (source: %s): ", key, source)
		answer, err := c.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(c.out, "Device Name cannot be empty. Please enter a value.")
	}
}

// readLine returns the next input line in normalized form. A final line
// without a trailing newline is still returned; io.EOF comes on the call
// after it.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}
	return util.NormalizeText(line), nil
}
