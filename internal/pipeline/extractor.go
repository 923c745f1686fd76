package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-waze-link/pkg/extract"
	"github.com/shouni/go-waze-link/pkg/table"
	"github.com/shouni/go-waze-link/pkg/types"
)

const (
	// DefaultColumn は、リンクを保持するカラム名のデフォルトです。
	DefaultColumn = "waze_link"
	// DefaultProgressEvery は、進捗を通知する行間隔のデフォルトです。
	DefaultProgressEvery = 50

	extractedSuffix = "_extracted_waze_links.csv"

	maxSamples   = 3
	sampleWindow = 5
	anchorPrefix = "<a"
)

// ErrInputNotFound は入力ファイルが存在しない場合のエラーです。
var ErrInputNotFound = errors.New("入力ファイルが見つかりません")

// ExtractOptions は ExtractFile の設定です。
type ExtractOptions struct {
	Input  string
	Output string // 空の場合は DefaultOutputPath(Input)
	Column string // 空の場合は DefaultColumn

	ProgressEvery int            // 0 以下の場合は DefaultProgressEvery
	OnProgress    func(rows int) // nil 可
}

// DefaultOutputPath は `<入力ファイルの拡張子を除いたパス>_extracted_waze_links.csv` を返します。
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + extractedSuffix
}

// ExtractFile は入力テーブルの区切り文字を推定し、対象カラムからURLを抽出した新しいテーブルを書き出します。
// 対象カラムが存在しない場合、出力ファイルは作成されません。
func ExtractFile(opts ExtractOptions) (*types.Report, error) {
	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}
	output := opts.Output
	if output == "" {
		output = DefaultOutputPath(opts.Input)
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.Input)
		}
		return nil, fmt.Errorf("入力ファイルの読み込みに失敗しました (%s): %w", opts.Input, err)
	}

	sample := data
	if len(sample) > table.SniffSampleSize {
		sample = sample[:table.SniffSampleSize]
	}
	delim := table.SniffDelimiter(sample)

	tbl, err := table.Read(bytes.NewReader(data), delim)
	if err != nil {
		return nil, fmt.Errorf("テーブルの解析に失敗しました (%s): %w", opts.Input, err)
	}

	report := &types.Report{Source: opts.Input, Output: output}
	if err := transformColumn(tbl, column, report, func(rows int) {
		if opts.OnProgress != nil && rows%every == 0 {
			opts.OnProgress(rows)
		}
	}); err != nil {
		return nil, err
	}

	if err := writeTable(output, tbl); err != nil {
		return nil, err
	}
	return report, nil
}

// transformColumn は対象カラムに extract.Extract を適用し、report に集計します。
// カラムが存在しない場合は tbl を変更せずにエラーを返します。
func transformColumn(tbl *table.Table, column string, report *types.Report, progress func(rows int)) error {
	col, err := tbl.ColumnIndex(column)
	if err != nil {
		return err
	}

	report.Changed = tbl.Apply(col, func(row int, value string) string {
		extracted := extract.Extract(value)
		if extracted != value && extract.IsNavigationLink(extracted) {
			report.Navigation++
		}
		if progress != nil {
			progress(row + 1)
		}
		return extracted
	})
	report.Rows = len(tbl.Rows)
	report.Samples = collectSamples(tbl.Rows, col)
	return nil
}

// collectSamples は先頭数行から抽出済みのリンクを最大 maxSamples 件集めます。
func collectSamples(rows [][]string, col int) []string {
	var samples []string
	for i, row := range rows {
		if i >= sampleWindow || len(samples) >= maxSamples {
			break
		}
		value := row[col]
		if extract.IsNavigationLink(value) && !strings.HasPrefix(value, anchorPrefix) {
			samples = append(samples, value)
		}
	}
	return samples
}

func writeTable(path string, tbl *table.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました (%s): %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("出力ファイルのクローズに失敗しました (%s): %w", path, cerr)
		}
	}()

	if err := tbl.Write(f); err != nil {
		return fmt.Errorf("テーブルの書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}
