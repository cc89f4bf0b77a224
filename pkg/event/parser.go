package event

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// fieldsPerLine is the kind marker plus signal id and timestamp.
const fieldsPerLine = 3

// fieldSeparator is the only accepted separator between fields.
const fieldSeparator = " "

var errNotDecimal = errors.New("not a base-10 integer")

// ErrMalformedLine is wrapped by every *MalformedLineError.
var ErrMalformedLine = errors.New("malformed log line")

// MalformedLineError reports a log line that cannot be parsed into an Event.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s %d %q: %s", ErrMalformedLine, e.Line, e.Text, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedLine).
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedLine
}

// Lines splits log contents into its non-empty lines. When the number of
// lines is odd the last one is dropped: the producing run was cut before it
// could emit the matching half of its final observation.
func Lines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	var lines []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("read log: %w", scanErr)
	}

	if len(lines)%2 != 0 {
		lines = lines[:len(lines)-1]
	}

	return lines, nil
}

// Parse reads a whole log and returns its events in file order.
func Parse(r io.Reader) ([]Event, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(lines))

	for i, line := range lines {
		ev, parseErr := ParseLine(i+1, line)
		if parseErr != nil {
			return nil, parseErr
		}

		events = append(events, ev)
	}

	return events, nil
}

// ParseLine parses one "<C|D> <signal> <timestamp>" record. lineNo is stored
// on the event and reported in errors.
func ParseLine(lineNo int, line string) (Event, error) {
	malformed := func(reason string) error {
		return &MalformedLineError{Line: lineNo, Text: line, Reason: reason}
	}

	if line == "" {
		return Event{}, malformed("empty line")
	}

	kind, ok := KindFromChar(line[0])
	if !ok {
		return Event{}, malformed(fmt.Sprintf("unknown kind %q", line[0]))
	}

	fields := strings.Split(line, fieldSeparator)
	if len(fields[0]) != 1 {
		return Event{}, malformed("kind must be a single character")
	}

	if len(fields) != fieldsPerLine {
		return Event{}, malformed(fmt.Sprintf("expected %d fields separated by single spaces, got %d",
			fieldsPerLine, len(fields)))
	}

	signal, sigErr := parseDecimal(fields[1])
	if sigErr != nil {
		return Event{}, malformed("signal id is not a base-10 integer")
	}

	ts, tsErr := parseDecimal(fields[2])
	if tsErr != nil {
		return Event{}, malformed("timestamp is not a base-10 integer")
	}

	if ts < 0 {
		return Event{}, malformed("timestamp is negative")
	}

	return Event{Kind: kind, Signal: signal, Timestamp: ts, Line: lineNo}, nil
}

// parseDecimal accepts an optional leading minus followed by ASCII digits.
// strconv.ParseInt alone would also take a leading plus sign.
func parseDecimal(s string) (int64, error) {
	if s == "" || s[0] == '+' {
		return 0, errNotDecimal
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errNotDecimal, err)
	}

	return v, nil
}

// Format writes events back in log form, one per line.
func Format(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)

	for _, ev := range events {
		_, err := fmt.Fprintln(bw, ev.String())
		if err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}

	flushErr := bw.Flush()
	if flushErr != nil {
		return fmt.Errorf("flush events: %w", flushErr)
	}

	return nil
}
