package types

// Report は、1回のテーブル書き換え処理の結果を保持します。
// extract / rewrite の両コマンドの集計出力に利用されます。
type Report struct {
	Source string // 入力ファイルのパス
	Output string // 書き出し先のパス
	Backup string // バックアップのパス (rewrite のみ)

	Rows       int      // 処理した行数
	Changed    int      // 値が変化した行数
	Navigation int      // 変化した行のうち Waze / Google Maps のリンクになった行数
	Samples    []string // 抽出されたリンクの例
}
