package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Bookings for 2025-03-01",
		Headers: []string{"Time", "Name", "Email"},
		Rows: [][]string{
			{"09:00 - 09:30", "Jane Doe", "jane@example.com"},
			{"10:00 - 10:30", "Smith, John"},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	body, err := RenderCSV(sampleDataset())
	require.NoError(t, err)
	expected := "Time,Name,Email\n09:00 - 09:30,Jane Doe,jane@example.com\n10:00 - 10:30,\"Smith, John\",\n"
	assert.Equal(t, expected, string(body))
}

func TestRenderCSVNeutralisesFormulas(t *testing.T) {
	body, err := RenderCSV(Dataset{
		Headers: []string{"Visitor", "Notes"},
		Rows: [][]string{
			{"=HYPERLINK(\"http://evil.test\")", "+1 555"},
			{"@SUM(A1)", "-2"},
			{"Jane", "call me at 5"},
		},
	})
	require.NoError(t, err)
	expected := "Visitor,Notes\n\"'=HYPERLINK(\"\"http://evil.test\"\")\",'+1 555\n'@SUM(A1),'-2\nJane,call me at 5\n"
	assert.Equal(t, expected, string(body))
}

func TestRenderRejectsEmptyHeaders(t *testing.T) {
	_, err := RenderCSV(Dataset{})
	assert.ErrorIs(t, err, ErrNoColumns)
	_, err = RenderPDF(Dataset{})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestRenderPDF(t *testing.T) {
	doc, err := Render(sampleDataset(), FormatPDF, "bookings-2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "bookings-2025-03-01.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleDataset(), Format("xlsx"), "x")
	assert.Error(t, err)
}
