package sms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Budget carries the transport's character limits. LineChars counts rendered
// characters per line; the segment limits count GSM-7 septets.
type Budget struct {
	LineChars            int
	SingleSegmentSeptets int
	ConcatSegmentSeptets int
}

// DefaultBudget is plain GSM-7 SMS: 42-character lines, 160 septets for a
// standalone message, 153 once concatenation headers claim their share.
func DefaultBudget() Budget {
	return Budget{LineChars: 42, SingleSegmentSeptets: 160, ConcatSegmentSeptets: 153}
}

// Document is the logical content of one reply before packing. Title is the
// first line; Header is the minimal location header repeated on continuation
// segments so each arrives self-contained; Rows are atomic lines that are
// never split across segments.
type Document struct {
	Title  string
	Header string
	Rows   []string
}

// Message is a compiled reply. CharacterCount and SegmentCount are
// authoritative for billing; consumers never re-parse the rendered text.
type Message struct {
	Segments       []string
	CharacterCount int
	SegmentCount   int
}

// RowTooWideError reports a logical line that cannot fit the line budget on
// its own. This is a defect in the column set or reference data, not a
// runtime user error.
type RowTooWideError struct {
	Row    string
	Width  int
	Budget int
}

func (e *RowTooWideError) Error() string {
	return fmt.Sprintf("row %q is %d chars, budget %d", e.Row, e.Width, e.Budget)
}

// maxSegments bounds runaway documents; a forecast reply is a handful of
// segments at most.
const maxSegments = 99

// Compile renders a document into SMS segments. Content fitting the
// standalone budget goes out as a single unprefixed segment; anything larger
// is split into "[i/N] "-prefixed segments with the header repeated, each
// within the concatenated budget.
func Compile(doc Document, b Budget) (Message, error) {
	if err := checkLine(doc.Title, b.LineChars); err != nil {
		return Message{}, err
	}
	for _, row := range doc.Rows {
		if err := checkLine(row, b.LineChars); err != nil {
			return Message{}, err
		}
	}

	single := strings.Join(append([]string{doc.Title}, doc.Rows...), "\n")
	septets, err := Septets(single)
	if err != nil {
		return Message{}, err
	}
	if septets <= b.SingleSegmentSeptets {
		return newMessage([]string{single}), nil
	}

	// The prefix width depends on the total segment count, which depends on
	// the packing. Iterate to the fixed point; the count only shifts when
	// the total crosses a digit boundary, so this settles in a few rounds.
	total := 2
	for range 8 {
		segs, err := packSegments(doc, b, total)
		if err != nil {
			return Message{}, err
		}
		if len(segs) > maxSegments {
			return Message{}, fmt.Errorf("document needs %d segments, limit %d", len(segs), maxSegments)
		}
		if len(segs) == total {
			return newMessage(segs), nil
		}
		total = len(segs)
	}
	return Message{}, fmt.Errorf("segment count did not converge")
}

// packSegments packs rows greedily into segments assuming the given total
// for prefix rendering. The returned slice may disagree with total; the
// caller re-packs until they match.
func packSegments(doc Document, b Budget, total int) ([]string, error) {
	segs := make([]string, 0, total)
	rows := doc.Rows

	for idx := 1; len(rows) > 0 || idx == 1; idx++ {
		first := fmt.Sprintf("[%d/%d] ", idx, total)
		if idx == 1 {
			first += doc.Title
		} else {
			first += doc.Header
		}
		if err := checkLine(first, b.LineChars); err != nil {
			return nil, err
		}

		used, err := Septets(first)
		if err != nil {
			return nil, err
		}
		seg := first
		packed := 0
		for len(rows) > 0 {
			cost, err := Septets("\n" + rows[0])
			if err != nil {
				return nil, err
			}
			if used+cost > b.ConcatSegmentSeptets {
				break
			}
			seg += "\n" + rows[0]
			used += cost
			rows = rows[1:]
			packed++
		}
		if packed == 0 && len(rows) > 0 && idx > 1 {
			return nil, fmt.Errorf("row %q does not fit a continuation segment", rows[0])
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func checkLine(line string, budget int) error {
	if w := utf8.RuneCountInString(line); w > budget {
		return &RowTooWideError{Row: line, Width: w, Budget: budget}
	}
	return nil
}

func newMessage(segs []string) Message {
	chars := 0
	for _, s := range segs {
		chars += utf8.RuneCountInString(s)
	}
	return Message{Segments: segs, CharacterCount: chars, SegmentCount: len(segs)}
}

var segmentPrefix = regexp.MustCompile(`^\[\d+/\d+\] `)

// Reassemble reverses packing for verification: prefixes are stripped and
// each continuation segment's repeated header line dropped, restoring the
// document's title and rows exactly once in order.
func Reassemble(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	if len(segments) == 1 {
		return segments[0]
	}
	var lines []string
	for i, seg := range segments {
		segLines := strings.Split(seg, "\n")
		if i == 0 {
			segLines[0] = segmentPrefix.ReplaceAllString(segLines[0], "")
			lines = append(lines, segLines...)
		} else if len(segLines) > 1 {
			lines = append(lines, segLines[1:]...)
		}
	}
	return strings.Join(lines, "\n")
}
