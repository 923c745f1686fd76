package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	textUtils "github.com/shouni/go-utils/text"
	"github.com/spf13/cobra"

	"github.com/shouni/go-waze-link/internal/pipeline"
	"github.com/shouni/go-waze-link/pkg/extract"
	"github.com/shouni/go-waze-link/pkg/table"
	"github.com/shouni/go-waze-link/pkg/types"
)

// プレビュー表示の最大文字数
const previewLength = 80

var (
	outputPath string // --output 出力先
	runSamples bool   // --test サンプル抽出のみ実行
)

// runExtractPipeline は、入力ファイルからリンクを抽出して新しいファイルへ書き出すメインロジックです。
// 入力ファイルやカラムが存在しない場合はメッセージを表示して正常終了します。
func runExtractPipeline(w io.Writer, input string) error {
	log.Printf("%s を処理しています...", input)

	// 1. 抽出の実行 (進捗は Flags.ProgressEvery 行ごとにコールバックで通知される)
	report, err := pipeline.ExtractFile(pipeline.ExtractOptions{
		Input:         input,
		Output:        outputPath,
		Column:        Flags.Column,
		ProgressEvery: Flags.ProgressEvery,
		OnProgress: func(rows int) {
			log.Printf("%d 行を処理しました...", rows)
		},
	})
	// 2. 入力ファイルやカラムがない場合はメッセージのみ表示し、正常終了として扱う
	if err != nil {
		var colErr *table.ColumnNotFoundError
		if errors.Is(err, pipeline.ErrInputNotFound) || errors.As(err, &colErr) {
			fmt.Fprintf(w, "エラー: %v\n", err)
			return nil
		}
		return fmt.Errorf("リンク抽出パイプラインの実行エラー (入力: %s): %w", input, err)
	}

	// 3. 結果の出力
	printReport(w, report)
	return nil
}

// printReport は抽出結果の集計を出力します。
func printReport(w io.Writer, report *types.Report) {
	fmt.Fprintln(w, "--- 処理完了 ---")
	fmt.Fprintf(w, "処理した行数: %d\n", report.Rows)
	fmt.Fprintf(w, "変更した行数: %d\n", report.Changed)
	fmt.Fprintf(w, "抽出したWazeリンク: %d\n", report.Navigation)
	fmt.Fprintf(w, "出力先: %s\n", report.Output)

	if len(report.Samples) > 0 {
		fmt.Fprintln(w, "\n抽出されたURLの例:")
		for _, s := range report.Samples {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

// runSampleExtraction は組み込みのサンプルに対して抽出を実行し、結果を表示します。
func runSampleExtraction(w io.Writer) {
	fmt.Fprintln(w, "URL抽出のテスト:")
	for i, sample := range extract.Samples {
		fmt.Fprintf(w, "\nテスト %d:\n", i+1)
		fmt.Fprintf(w, "  元の値: %s\n", preview(sample))
		fmt.Fprintf(w, "  抽出結果: %s\n", extract.Extract(sample))
	}
}

// preview は空白を正規化し、previewLength 文字を超える部分を省略します。
func preview(s string) string {
	s = textUtils.NormalizeText(s)
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength]) + "..."
}

var extractCmd = &cobra.Command{
	Use:   "extract [input_file]",
	Short: "CSVのアンカータグからWazeのURLを抽出し、新しいファイルへ書き出します",
	Long:  `入力CSVの区切り文字を推定し、対象カラムのアンカータグからURLを抽出します。結果は --output、または <入力ファイル名>_extracted_waze_links.csv に書き出されます。`,
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. --test が指定された場合は組み込みサンプルの抽出結果を表示して終了
		if runSamples {
			runSampleExtraction(cmd.OutOrStdout())
			return nil
		}

		// 2. 入力ファイルの決定 (--test なしでは位置引数が必須)
		if len(args) == 0 {
			return fmt.Errorf("--test を指定しない場合は input_file が必須です")
		}

		// 3. メインロジックの実行
		return runExtractPipeline(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	// --output フラグ: 未指定時は入力ファイル名から出力先を導出する
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"出力CSVのパス (デフォルト: <入力ファイル名>_extracted_waze_links.csv)")
	// --test フラグ: input_file なしで実行できる
	extractCmd.Flags().BoolVar(&runSamples, "test", false, "サンプルに対して抽出を実行して終了します")
}
