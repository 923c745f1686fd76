package cmd

import (
	"fmt"
	"io"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-waze-link/internal/pipeline"
)

// runRewritePipeline は、CSVの対象カラムを抽出済みURLで置き換え、元のファイルへ書き戻します。
func runRewritePipeline(w io.Writer, path string) error {
	// 1. 一時ファイルへの書き出しとバックアップ付きの置き換え
	report, err := pipeline.RewriteInPlace(path, Flags.Column)
	if err != nil {
		return fmt.Errorf("CSVの書き換えに失敗しました (%s): %w", path, err)
	}

	// 2. 結果の出力 (行数の集計は --verbose 時のみ)
	if clibase.Flags.Verbose {
		fmt.Fprintf(w, "処理した行数: %d, 変更した行数: %d\n", report.Rows, report.Changed)
	}
	fmt.Fprintf(w, "'%s' を更新しました。バックアップ: '%s'\n", report.Output, report.Backup)
	return nil
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [csv]",
	Short: "CSVのアンカータグを直接のURLに置き換えます (バックアップ付き)",
	Long:  `CSV (カンマ区切り) の対象カラムに含まれるアンカータグをURLに置き換えます。元のファイルは <csv>.bak に保存されます。`,
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 処理対象ファイルの決定 (位置引数がなければ light-edit.csv)
		path := pipeline.DefaultRewriteTarget
		if len(args) > 0 {
			path = args[0]
		}

		// 2. メインロジックの実行 (カラム未検出などは致命的エラーとして clibase に返す)
		return runRewritePipeline(cmd.OutOrStdout(), path)
	},
}
