package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"collection-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecoder_CSV(t *testing.T) {
	t.Run("Strips BOM and keys rows by header", func(t *testing.T) {
		content := "\xef\xbb\xbfACCOUNT_NUM,PAYMENT_AMOUNT\n38630092,\"1,500\"\n\n0038630093,200\n"

		table, err := NewDecoder(0).Decode(strings.NewReader(content), "uploads/payments.CSV")

		require.NoError(t, err)
		assert.Equal(t, []string{"ACCOUNT_NUM", "PAYMENT_AMOUNT"}, table.Headers)
		assert.Equal(t, 2, table.TotalRows)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "38630092", table.Rows[0]["ACCOUNT_NUM"])
		assert.Equal(t, "1,500", table.Rows[0]["PAYMENT_AMOUNT"])
		assert.Equal(t, "payments.CSV", table.FileName)
		assert.Len(t, table.Digest, 64)
	})

	t.Run("Semicolon delimited export", func(t *testing.T) {
		content := "Account Number;Name\n123;Kamal\n"

		table, err := NewDecoder(0).Decode(strings.NewReader(content), "c.csv")

		require.NoError(t, err)
		assert.Equal(t, "Kamal", table.Rows[0]["Name"])
	})

	t.Run("Blank and repeated headers", func(t *testing.T) {
		content := "Name,,Name,Name_2\na,b,c,d\n"

		table, err := NewDecoder(0).Decode(strings.NewReader(content), "c.csv")

		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Column2", "Name_2", "Name_2_2"}, table.Headers)
		assert.Equal(t, "c", table.Rows[0]["Name_2"])
	})

	t.Run("Short rows are padded with empty cells", func(t *testing.T) {
		table, err := NewDecoder(0).Decode(strings.NewReader("A,B,C\n1\n"), "c.csv")

		require.NoError(t, err)
		assert.Equal(t, "", table.Rows[0]["C"])
	})

	t.Run("Same content yields same digest", func(t *testing.T) {
		a, err := NewDecoder(0).Decode(strings.NewReader("A\n1\n"), "one.csv")
		require.NoError(t, err)
		b, err := NewDecoder(0).Decode(strings.NewReader("A\n1\n"), "two.csv")
		require.NoError(t, err)
		assert.Equal(t, a.Digest, b.Digest)
	})
}

func TestDecoder_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Account Number"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "New Arrears"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 38630092))
	require.NoError(t, f.SetCellValue(sheet, "B2", "750"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "AB123"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewDecoder(0).Decode(bytes.NewReader(buf.Bytes()), "arrears.xlsx")

	require.NoError(t, err)
	assert.Equal(t, []string{"Account Number", "New Arrears"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "38630092", table.Rows[0]["Account Number"])
	assert.Equal(t, "750", table.Rows[0]["New Arrears"])
	assert.Equal(t, "AB123", table.Rows[1]["Account Number"])
	assert.Equal(t, "", table.Rows[1]["New Arrears"])
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		fileName string
		maxBytes int64
		expected error
	}{
		{"Unsupported extension", "A\n1\n", "payments.pdf", 0, apperrors.ErrUnsupportedFileType},
		{"Empty file", "  \n", "payments.csv", 0, apperrors.ErrEmptyFile},
		{"Only blank records", ",,\n,\n", "payments.csv", 0, apperrors.ErrEmptyFile},
		{"Corrupt xlsx", "definitely not a zip", "payments.xlsx", 0, apperrors.ErrMalformedFile},
		{"Corrupt xls", "definitely not biff", "payments.xls", 0, apperrors.ErrMalformedFile},
		{"Too large", "ACCOUNT_NUM\n1234567890\n", "payments.csv", 8, apperrors.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.maxBytes).Decode(strings.NewReader(tt.content), tt.fileName)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.XLSX"))
	assert.True(t, Supported("a.xls"))
	assert.False(t, Supported("a.txt"))
	assert.False(t, Supported("xlsx"))
}
