package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

type readResult struct {
	line string
	err  error
}

// lineReader delivers input lines over a channel so a pending prompt can be
// abandoned when the context is cancelled. Lines may be of any length.
type lineReader struct {
	results <-chan readResult
}

func newLineReader(r io.Reader) *lineReader {
	ch := make(chan readResult)
	go func() {
		defer close(ch)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				ch <- readResult{line: strings.TrimRight(line, "\r\n")}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					ch <- readResult{err: err}
				}
				return
			}
		}
	}()
	return &lineReader{results: ch}
}

// next returns the next line, io.EOF once input is exhausted, the read
// error that stopped input, or the context error.
func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-lr.results:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
