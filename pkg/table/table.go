package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// emptyRecord は空の値1つだけのレコードの表現です。
const emptyRecord = "\"\"\n"

// ErrNoHeader は、入力にヘッダー行が存在しない場合のエラーです。
var ErrNoHeader = errors.New("CSVにヘッダー行がありません")

// ColumnNotFoundError は、必須カラムがヘッダーに存在しない場合のエラーです。
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("カラム '%s' が見つかりません。利用可能なカラム: %s", e.Column, strings.Join(e.Available, ", "))
}

// Table はヘッダー付きの区切りテキストをメモリ上に保持します。
// 各行はヘッダーと同じ順序のフィールドを持ちます。
type Table struct {
	Header    []string
	Rows      [][]string
	Delimiter rune
}

// Read は区切り文字 delim でテーブル全体を読み込みます。
// 先頭のBOMは読み飛ばし、ヘッダーより短い行は空文字で補完します。
// クォート内の改行は元の CRLF / LF のまま保持します。
func Read(r io.Reader, delim rune) (*Table, error) {
	data, err := io.ReadAll(unicode.UTF8BOM.NewDecoder().Reader(r))
	if err != nil {
		return nil, fmt.Errorf("入力の読み込みに失敗しました: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1 // 列数の揃っていない行も受け付ける
	reader.LazyQuotes = true

	// readRecord は1レコードを読み、encoding/csv が LF に変換したクォート内の CRLF を復元します。
	readRecord := func() ([]string, error) {
		start := reader.InputOffset()
		record, err := reader.Read()
		if err != nil {
			return nil, err
		}
		restoreCRLF(data[start:reader.InputOffset()], record)
		return record, nil
	}

	header, err := readRecord()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("ヘッダー行の読み込みに失敗しました: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, ErrNoHeader
	}

	t := &Table{Header: header, Delimiter: delim}
	for {
		record, err := readRecord()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("行の読み込みに失敗しました: %w", err)
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// restoreCRLF は、レコードの生バイト列 raw に現れる改行の種類をフィールド内の改行へ順に書き戻します。
// フィールド内の改行は raw 中の改行 (読み飛ばされた空行とレコード終端を除く) と同じ順序で現れます。
func restoreCRLF(raw []byte, record []string) {
	hasNewline := false
	for _, f := range record {
		if strings.Contains(f, "\n") {
			hasNewline = true
			break
		}
	}
	if !hasNewline {
		return
	}

	raw = bytes.TrimLeft(raw, "\r\n")
	raw = bytes.TrimSuffix(raw, []byte("\n"))

	var crlf []bool
	for i, b := range raw {
		if b == '\n' {
			crlf = append(crlf, i > 0 && raw[i-1] == '\r')
		}
	}

	k := 0
	for i, f := range record {
		if !strings.Contains(f, "\n") {
			continue
		}
		var sb strings.Builder
		for j := 0; j < len(f); j++ {
			if f[j] == '\n' {
				if k < len(crlf) && crlf[k] {
					sb.WriteByte('\r')
				}
				k++
			}
			sb.WriteByte(f[j])
		}
		record[i] = sb.String()
	}
}

// ColumnIndex はカラム名の位置を返します。存在しない場合は *ColumnNotFoundError を返します。
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, &ColumnNotFoundError{Column: name, Available: t.Header}
}

// Apply は全行の col 番目のフィールドに fn を適用し、値が変化した行数を返します。
func (t *Table) Apply(col int, fn func(row int, value string) string) int {
	changed := 0
	for i, row := range t.Rows {
		before := row[col]
		after := fn(i, before)
		if after != before {
			row[col] = after
			changed++
		}
	}
	return changed
}

// Write はヘッダーと全行を Table.Delimiter で書き出します。
// 空の値1つだけのレコードは空行ではなく `""` として書き出し、再読み込み時に行が失われないようにします。
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if t.Delimiter != 0 {
		writer.Comma = t.Delimiter
	}

	writeRecord := func(record []string) error {
		if len(record) != 1 || record[0] != "" {
			return writer.Write(record)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(w, emptyRecord)
		return err
	}

	if err := writeRecord(t.Header); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗しました: %w", err)
	}
	for _, row := range t.Rows {
		if err := writeRecord(row); err != nil {
			return fmt.Errorf("行の書き込みに失敗しました: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("行の書き込みに失敗しました: %w", err)
	}
	return nil
}
