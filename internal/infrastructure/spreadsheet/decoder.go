// Package spreadsheet decodes uploaded CSV, XLSX and XLS files into header-keyed rows.
package spreadsheet

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"collection-engine/internal/domain/importer"
	"collection-engine/internal/pkg/apperrors"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var supportedExtensions = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
	".xls":  {},
}

type Decoder struct {
	maxBytes int64
}

var _ importer.Decoder = (*Decoder)(nil)

// NewDecoder reads at most maxBytes of an upload; zero means no limit.
func NewDecoder(maxBytes int64) *Decoder {
	return &Decoder{maxBytes: maxBytes}
}

func Supported(fileName string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

func (d *Decoder) Decode(r io.Reader, fileName string) (*importer.Table, error) {
	if !Supported(fileName) {
		return nil, fmt.Errorf("%w: %q must be .xlsx, .xls or .csv", apperrors.ErrUnsupportedFileType, fileName)
	}

	if d.maxBytes > 0 {
		r = io.LimitReader(r, d.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMalformedFile, err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrInvalidArgument, d.maxBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx":
		records, err = readXLSX(data)
	case ".xls":
		records, err = readXLS(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMalformedFile, err)
	}

	table, err := buildTable(records)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	table.Digest = hex.EncodeToString(sum[:])
	table.FileName = filepath.Base(fileName)
	return table, nil
}

func readCSV(data []byte) ([][]string, error) {
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	content, err := io.ReadAll(decoded)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// sniffDelimiter picks ';' for exports from locales that use a decimal comma.
func sniffDelimiter(content []byte) rune {
	firstLine, _, _ := bytes.Cut(content, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

func readXLS(data []byte) (records [][]string, err error) {
	// The BIFF parser panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("xls parser: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		records = append(records, cells)
	}
	return records, nil
}

// buildTable treats the first non-blank record as the header row. Blank headers become
// Column{n}, repeated headers get a numeric suffix, and blank data rows are dropped.
func buildTable(records [][]string) (*importer.Table, error) {
	start := 0
	for start < len(records) && isBlankRecord(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, apperrors.ErrEmptyFile
	}

	headers := normalizeHeaders(records[start])
	rows := make([]importer.Row, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(importer.Row, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(rec) {
				value = strings.TrimSpace(rec[i])
			}
			row[h] = value
		}
		rows = append(rows, row)
	}

	return &importer.Table{
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(rows),
	}, nil
}

func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = norm.NFC.String(strings.TrimSpace(h))
		if h == "" {
			h = "Column" + strconv.Itoa(i+1)
		}
		name := h
		for n := 2; used[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
