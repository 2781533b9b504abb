package sms

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTitle = "Bear Peak 26Aug 0542-1951"

func testDoc(rows int) Document {
	doc := Document{Title: testTitle, Header: "Bear Peak"}
	for h := 0; h < rows; h++ {
		doc.Rows = append(doc.Rows, fmt.Sprintf("%02d|3/13|r20|p0.0|w15/30|f23c20", h%24))
	}
	return doc
}

func logicalContent(doc Document) string {
	return strings.Join(append([]string{doc.Title}, doc.Rows...), "\n")
}

func TestCompileSingleSegment(t *testing.T) {
	t.Run("short document is one unprefixed segment", func(t *testing.T) {
		doc := testDoc(3)
		msg, err := Compile(doc, DefaultBudget())

		require.NoError(t, err)
		require.Equal(t, 1, msg.SegmentCount)
		assert.Equal(t, logicalContent(doc), msg.Segments[0])
		assert.NotContains(t, msg.Segments[0], "[1/")
	})

	t.Run("title only", func(t *testing.T) {
		msg, err := Compile(Document{Title: testTitle, Header: "Bear Peak"}, DefaultBudget())

		require.NoError(t, err)
		require.Equal(t, 1, msg.SegmentCount)
		assert.Equal(t, testTitle, msg.Segments[0])
	})

	t.Run("counts match a recount", func(t *testing.T) {
		msg, err := Compile(testDoc(3), DefaultBudget())

		require.NoError(t, err)
		assert.Equal(t, len(msg.Segments), msg.SegmentCount)
		chars := 0
		for _, s := range msg.Segments {
			chars += utf8.RuneCountInString(s)
		}
		assert.Equal(t, chars, msg.CharacterCount)
	})
}

var prefixRe = regexp.MustCompile(`^\[(\d+)/(\d+)\] `)

func TestCompileMultiSegment(t *testing.T) {
	b := DefaultBudget()

	t.Run("segments stay within the concatenated budget", func(t *testing.T) {
		doc := testDoc(24)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		require.Greater(t, msg.SegmentCount, 1)
		for i, seg := range msg.Segments {
			n, err := Septets(seg)
			require.NoError(t, err)
			assert.LessOrEqual(t, n, b.ConcatSegmentSeptets, "segment %d", i+1)
		}
	})

	t.Run("every segment is prefixed and self-contained", func(t *testing.T) {
		doc := testDoc(24)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		for i, seg := range msg.Segments {
			m := prefixRe.FindStringSubmatch(seg)
			require.NotNil(t, m, "segment %d missing prefix", i+1)
			assert.Equal(t, fmt.Sprintf("%d", i+1), m[1])
			assert.Equal(t, fmt.Sprintf("%d", msg.SegmentCount), m[2])

			firstLine := strings.SplitN(seg, "\n", 2)[0]
			if i == 0 {
				assert.Equal(t, m[0]+doc.Title, firstLine)
			} else {
				assert.Equal(t, m[0]+doc.Header, firstLine)
			}
		}
	})

	t.Run("reassembly restores the document exactly once", func(t *testing.T) {
		doc := testDoc(24)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		assert.Equal(t, logicalContent(doc), Reassemble(msg.Segments))
	})

	t.Run("no row is split across segments", func(t *testing.T) {
		doc := testDoc(24)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		joined := strings.Join(msg.Segments, "\x00")
		for _, row := range doc.Rows {
			assert.Equal(t, 1, strings.Count(joined, row), "row %q", row)
		}
	})

	t.Run("double digit totals converge", func(t *testing.T) {
		doc := testDoc(60)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		require.GreaterOrEqual(t, msg.SegmentCount, 10)
		assert.Equal(t, logicalContent(doc), Reassemble(msg.Segments))
		for _, seg := range msg.Segments {
			n, err := Septets(seg)
			require.NoError(t, err)
			assert.LessOrEqual(t, n, b.ConcatSegmentSeptets)
		}
	})

	t.Run("all lines respect the line budget", func(t *testing.T) {
		doc := testDoc(24)
		msg, err := Compile(doc, b)

		require.NoError(t, err)
		for _, seg := range msg.Segments {
			for _, line := range strings.Split(seg, "\n") {
				assert.LessOrEqual(t, utf8.RuneCountInString(line), b.LineChars, "line %q", line)
			}
		}
	})
}

func TestCompileErrors(t *testing.T) {
	b := DefaultBudget()

	t.Run("oversize row is a defect", func(t *testing.T) {
		doc := testDoc(2)
		doc.Rows = append(doc.Rows, strings.Repeat("x", 50))

		_, err := Compile(doc, b)
		var wide *RowTooWideError
		require.ErrorAs(t, err, &wide)
		assert.Equal(t, 50, wide.Width)
		assert.Equal(t, 42, wide.Budget)
	})

	t.Run("oversize title is a defect", func(t *testing.T) {
		doc := testDoc(2)
		doc.Title = strings.Repeat("t", 43)

		_, err := Compile(doc, b)
		var wide *RowTooWideError
		assert.ErrorAs(t, err, &wide)
	})

	t.Run("title that cannot carry a prefix is a defect", func(t *testing.T) {
		// Fits the line alone, but not once "[1/N] " is prepended in the
		// multi-segment path.
		doc := testDoc(24)
		doc.Title = strings.Repeat("t", 40)

		_, err := Compile(doc, b)
		var wide *RowTooWideError
		require.ErrorAs(t, err, &wide)
	})

	t.Run("non-GSM content is rejected", func(t *testing.T) {
		doc := testDoc(2)
		doc.Rows[0] = "06|3/13|r20 ☔"

		_, err := Compile(doc, b)
		assert.ErrorIs(t, err, ErrNotGSM7)
	})
}

func TestReassemble(t *testing.T) {
	t.Run("single segment passes through", func(t *testing.T) {
		assert.Equal(t, "a\nb", Reassemble([]string{"a\nb"}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", Reassemble(nil))
	})
}
