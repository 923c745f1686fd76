package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shouni/go-waze-link/pkg/table"
	"github.com/shouni/go-waze-link/pkg/types"
)

const (
	// DefaultRewriteTarget は rewrite コマンドのデフォルトの対象ファイルです。
	DefaultRewriteTarget = "light-edit.csv"

	backupSuffix = ".bak"
	tempInfix    = ".tmp."
	rewriteComma = ','
)

// BackupPath は path のバックアップファイルのパスを返します。
func BackupPath(path string) string {
	return path + backupSuffix
}

// RewriteInPlace は CSV (カンマ区切り) の対象カラムを抽出済みURLに置き換え、元のパスへ書き戻します。
// 同じディレクトリの一時ファイルへ全体を書き出した後、元ファイルを `.bak` へ移動し、一時ファイルを元のパスへ移動します。
// 置き換えが完了しない場合、元ファイルは変更されず一時ファイルは削除されます。
func RewriteInPlace(path, column string) (*types.Report, error) {
	if column == "" {
		column = DefaultColumn
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("入力ファイルの確認に失敗しました (%s): %w", path, err)
	}

	tbl, err := readCommaTable(path)
	if err != nil {
		return nil, err
	}

	report := &types.Report{Source: path, Output: path, Backup: BackupPath(path)}
	if err := transformColumn(tbl, column, report, nil); err != nil {
		return nil, err
	}

	tmpPath, err := writeTemp(path, info.Mode().Perm(), tbl)
	if err != nil {
		return nil, err
	}

	if err := replaceWithBackup(path, tmpPath, report.Backup); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return report, nil
}

func readCommaTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("入力ファイルのオープンに失敗しました (%s): %w", path, err)
	}
	defer f.Close()

	tbl, err := table.Read(f, rewriteComma)
	if err != nil {
		return nil, fmt.Errorf("CSVの解析に失敗しました (%s): %w", path, err)
	}
	return tbl, nil
}

// writeTemp は path と同じディレクトリに一時ファイルを作成してテーブルを書き出し、クローズ済みのパスを返します。
// 同一ディレクトリに置くことで、後続のリネームがデバイスをまたがないようにします。
func writeTemp(path string, perm os.FileMode, tbl *table.Table) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+tempInfix+"*")
	if err != nil {
		return "", fmt.Errorf("一時ファイルの作成に失敗しました (%s): %w", dir, err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}

	if err := tbl.Write(tmp); err != nil {
		return fail(fmt.Errorf("一時ファイルへの書き込みに失敗しました (%s): %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("一時ファイルの同期に失敗しました (%s): %w", tmpPath, err))
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(fmt.Errorf("一時ファイルの権限設定に失敗しました (%s): %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("一時ファイルのクローズに失敗しました (%s): %w", tmpPath, err)
	}
	return tmpPath, nil
}

// replaceWithBackup は path を backup へ移動した後、tmpPath を path へ移動します。
// 2段目が失敗した場合は backup を path へ戻します。
func replaceWithBackup(path, tmpPath, backup string) error {
	if err := os.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("既存のバックアップの削除に失敗しました (%s): %w", backup, err)
	}
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("バックアップの作成に失敗しました (%s): %w", backup, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if rerr := os.Rename(backup, path); rerr != nil {
			return fmt.Errorf("置き換えに失敗し、元ファイルの復元にも失敗しました (バックアップ: %s): %w", backup, errors.Join(err, rerr))
		}
		return fmt.Errorf("一時ファイルの置き換えに失敗しました (%s): %w", path, err)
	}
	return nil
}
