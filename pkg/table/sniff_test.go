package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		sample   string
		expected rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"crlf", "a;b\r\n1;2\r\n", ';'},
		{"comma_inside_quotes_ignored", "a;b\n\"1,5\";2\n", ';'},
		{"consistent_beats_first_line_order", "a,b;c\n1;2,x,y\n3;4,z,w\n", ';'},
		{"inconsistent_falls_back_to_first_line", "a,b,c\n1,2\n", ','},
		{"single_column", "waze_link\nx\n", DefaultDelimiter},
		{"empty", "", DefaultDelimiter},
		{"bom_prefix", "\xef\xbb\xbfa;b\n1;2\n", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SniffDelimiter([]byte(tt.sample)))
		})
	}
}

func TestSniffDelimiter_TruncatedSample(t *testing.T) {
	// 上限サイズで切れた最後の行は判定に使われない
	line := "a;b,c\n"
	sample := strings.Repeat(line, SniffSampleSize/len(line)) + ",,,,,,,,"
	sample = sample[:SniffSampleSize]

	assert.Equal(t, ',', SniffDelimiter([]byte(sample)))
}
