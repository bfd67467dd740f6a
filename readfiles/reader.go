package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

/*
The line readers below abort a parse with a parseError panic, which the
exported readers turn back into an error. Any other panic is re-raised.
*/
type parseError struct {
	err error
}

func fail(format string, args ...any) {
	panic(parseError{fmt.Errorf(format, args...)})
}

func catch(err *error) {
	if r := recover(); r != nil {
		if pe, ok := r.(parseError); ok {
			*err = pe.err
			return
		}
		panic(r)
	}
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if len(line) != 0 {
				return strings.TrimRight(line, "\r")
			}
			fail("early end of file")
		}
		fail("read failed: %w", err)
	}
	line = strings.TrimRight(line[:len(line)-1], "\r") // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) {
	for i := 0; i < n; i++ {
		getLine(reader)
	}
}
