package cmd

import (
	"log"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-waze-link/internal/pipeline"
)

// --- グローバル定数 ---

const (
	appName = "waze-link"
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	Column        string // --column リンクを保持するカラム名
	ProgressEvery int    // --progress-every 進捗を表示する行間隔
}

var Flags AppFlags // アプリケーション固有フラグにアクセスするためのグローバル変数

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(
		&Flags.Column,
		"column",
		pipeline.DefaultColumn,
		"リンクを保持するカラム名",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.ProgressEvery,
		"progress-every",
		pipeline.DefaultProgressEvery,
		"進捗を表示する行間隔 (extract)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	// 1. 不正な進捗間隔はデフォルトに戻す
	if Flags.ProgressEvery <= 0 {
		Flags.ProgressEvery = pipeline.DefaultProgressEvery
	}

	// 2. clibase.Flags の利用 (--verbose 時のみ設定内容をログに出す)
	if clibase.Flags.Verbose {
		log.Printf("対象カラム: %s", Flags.Column)
		log.Printf("進捗表示の間隔: %d 行", Flags.ProgressEvery)
	}
	return nil
}

// --- エントリポイント ---

// Execute は、rootCmd を実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	// clibase.Execute を使用して、初期化、フラグ設定、サブコマンドの登録を一括で行う
	clibase.Execute(
		appName,
		addAppPersistentFlags, // カスタムフラグの追加コールバック
		initAppPreRunE,        // カスタムPersistentPreRunEコールバック
		// サブコマンドのリスト
		extractCmd,
		rewriteCmd,
	)
}
