package table

import (
	"bytes"
	"strings"
)

const (
	// SniffSampleSize は区切り文字の推定に使用する先頭バイト数です。
	SniffSampleSize = 1024

	// DefaultDelimiter は推定できなかった場合の区切り文字です。
	DefaultDelimiter = ','
)

// candidateDelimiters は優先順に並べた区切り文字の候補です。
var candidateDelimiters = []rune{',', ';', '\t', '|', ':'}

// SniffDelimiter はサンプルから区切り文字を推定します。
// 全ての行で同じ回数 (1回以上) 現れる候補を採用し、複数あれば出現回数の多いものを優先します。
// 該当がなければ1行目に現れる最初の候補、それもなければ DefaultDelimiter を返します。
func SniffDelimiter(sample []byte) rune {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return DefaultDelimiter
	}

	best, bestCount := rune(0), 0
	for _, c := range candidateDelimiters {
		count := countOutsideQuotes(lines[0], c)
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if countOutsideQuotes(line, c) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best, bestCount = c, count
		}
	}
	if best != 0 {
		return best
	}

	for _, c := range candidateDelimiters {
		if countOutsideQuotes(lines[0], c) > 0 {
			return c
		}
	}
	return DefaultDelimiter
}

// sampleLines はサンプルを行に分割します。
// サンプルが上限サイズで切り詰められている場合、最後の不完全な行は除外します。
func sampleLines(sample []byte) []string {
	sample = bytes.TrimPrefix(sample, []byte("\xef\xbb\xbf"))
	truncated := len(sample) >= SniffSampleSize && !bytes.HasSuffix(sample, []byte("\n"))

	raw := strings.Split(strings.ReplaceAll(string(sample), "\r\n", "\n"), "\n")
	if truncated && len(raw) > 1 {
		raw = raw[:len(raw)-1]
	}

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// countOutsideQuotes はダブルクォートの外側に現れる c の回数を数えます。
func countOutsideQuotes(line string, c rune) int {
	inQuotes := false
	count := 0
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == c && !inQuotes:
			count++
		}
	}
	return count
}
