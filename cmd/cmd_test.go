package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-waze-link/internal/pipeline"
	"github.com/shouni/go-waze-link/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlags(t *testing.T, output string) {
	t.Helper()
	prevFlags, prevOutput := Flags, outputPath
	Flags = AppFlags{Column: pipeline.DefaultColumn, ProgressEvery: pipeline.DefaultProgressEvery}
	outputPath = output
	t.Cleanup(func() {
		Flags, outputPath = prevFlags, prevOutput
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t c"))

	long := strings.Repeat("x", previewLength+10)
	assert.Equal(t, strings.Repeat("x", previewLength)+"...", preview(long))
}

func TestRunSampleExtraction(t *testing.T) {
	var buf bytes.Buffer
	runSampleExtraction(&buf)

	out := buf.String()
	assert.Contains(t, out, "テスト 3:")
	assert.Contains(t, out, "抽出結果: https://www.waze.com/ul?ll=31.79069840%2C35.22133660&navigate=yes&zoom=16")
	assert.Contains(t, out, "抽出結果: https://goo.gl/maps/DBvHPN7VXXp")
}

func TestRunExtractPipeline(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shelters.csv")
	require.NoError(t, os.WriteFile(input, []byte("name,waze_link\nA,<a href=\"https://www.waze.com/ul?ll=1&amp;z=2\">A</a>\n"), 0o644))
	output := filepath.Join(dir, "out.csv")
	setFlags(t, output)

	var buf bytes.Buffer
	require.NoError(t, runExtractPipeline(&buf, input))

	assert.Contains(t, buf.String(), "処理した行数: 1")
	assert.Contains(t, buf.String(), "変更した行数: 1")
	assert.Contains(t, buf.String(), "抽出したWazeリンク: 1")
	assert.Contains(t, buf.String(), "  - https://www.waze.com/ul?ll=1&z=2")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "name,waze_link\nA,https://www.waze.com/ul?ll=1&z=2\n", string(data))
}

func TestRunExtractPipeline_GracefulErrors(t *testing.T) {
	t.Run("入力ファイルなし", func(t *testing.T) {
		setFlags(t, "")
		var buf bytes.Buffer
		err := runExtractPipeline(&buf, filepath.Join(t.TempDir(), "missing.csv"))
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "入力ファイルが見つかりません")
	})

	t.Run("カラムなし", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "in.csv")
		require.NoError(t, os.WriteFile(input, []byte("name,address\nA,B\n"), 0o644))
		setFlags(t, "")

		var buf bytes.Buffer
		assert.NoError(t, runExtractPipeline(&buf, input))
		assert.Contains(t, buf.String(), "利用可能なカラム: name, address")

		_, err := os.Stat(pipeline.DefaultOutputPath(input))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestRunRewritePipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "light-edit.csv")
	require.NoError(t, os.WriteFile(path, []byte("waze_link\n<a href=\"https://ul.waze.com/ul\">x</a>\n"), 0o644))
	setFlags(t, "")

	var buf bytes.Buffer
	require.NoError(t, runRewritePipeline(&buf, path))
	assert.Contains(t, buf.String(), "バックアップ: '"+path+".bak'")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "waze_link\nhttps://ul.waze.com/ul\n", string(data))
}

func TestRunRewritePipeline_MissingColumnIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "light-edit.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nA\n"), 0o644))
	setFlags(t, "")
	Flags.Column = "link"

	var buf bytes.Buffer
	err := runRewritePipeline(&buf, path)
	require.Error(t, err)

	var colErr *table.ColumnNotFoundError
	assert.ErrorAs(t, err, &colErr)
	_, statErr := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(statErr))
}
