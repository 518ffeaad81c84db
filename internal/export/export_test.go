package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"voice-transcribe-go/internal/transcription"
)

func sampleViews() []transcription.View {
	base := time.Date(2025, 12, 1, 9, 30, 0, 123456789, time.UTC)
	return []transcription.View{
		{ID: 1, AudioFileName: "a.mp3", TranscribedText: "hello world", CreatedAt: base},
		{ID: 2, AudioFileName: "b.mp3", TranscribedText: "", CreatedAt: base.Add(time.Minute)},
		{ID: 5, AudioFileName: "Été.mp3", TranscribedText: "50% off, line_2", CreatedAt: base.Add(time.Hour)},
	}
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleViews()))

	got, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, want := range sampleViews() {
		assert.Equal(t, want.ID, got[i].ID)
		assert.Equal(t, want.AudioFileName, got[i].AudioFileName)
		assert.Equal(t, want.TranscribedText, got[i].TranscribedText)
		assert.True(t, want.CreatedAt.Equal(got[i].CreatedAt), "row %d created at", i)
	}
}

func TestWriteXLSX_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleViews()[:1]))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"1", "a.mp3", "hello world", "2025-12-01T09:30:00.123456789Z"}, rows[1])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadXLSX_ReorderedColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Created At", "Transcribed Text", "id", "Audio File"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2025-01-02T03:04:05Z", "text", "7", "x.mp3"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, "x.mp3", got[0].AudioFileName)
	assert.Equal(t, "text", got[0].TranscribedText)
	assert.True(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Equal(got[0].CreatedAt))
}

func TestReadXLSX_Errors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadXLSX(bytes.NewReader([]byte("plain text")))
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]interface{}{"ID", "Audio File"}))
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))

		_, err := ReadXLSX(&buf)
		assert.ErrorContains(t, err, `missing column "Transcribed Text"`)
	})

	t.Run("bad id", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ID", "Audio File", "Transcribed Text", "Created At"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"x", "a.mp3", "t", "2025-01-02T03:04:05Z"}))
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))

		_, err := ReadXLSX(&buf)
		assert.ErrorContains(t, err, "row 2: bad id")
	})
}
