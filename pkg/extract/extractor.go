package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"

	// urlStoppers は、裸のURLの終端とみなす文字です。
	urlStoppers = "\"'<> "

	wazeDomain     = "waze.com"
	googleMapsHost = "goo.gl"
	googleMapsPath = "/maps"
)

// hrefPattern は href 属性の値 (ダブル/シングルクォート) を大文字小文字を区別せずに捕捉します。
var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*(?:"([^"]+)"|'([^']+)')`)

// Samples は --test で使用するアンカータグのサンプルです。
var Samples = []string{
	`<a rel="noopener" href="https://www.waze.com/ul?ll=31.79069840%2C35.22133660&amp;navigate=yes&amp;zoom=16" target="_blank">25 Yoel St.</a>`,
	`<a rel="noopener" href="https://ul.waze.com/ul?place=ChIJu7pxf90pAxURLAhuO0f2chM&amp;ll=31.79247020%2C35.22314580&amp;navigate=yes" target="_blank">61 Shmuel Hanavi St.</a>`,
	`<a rel="noopener" href="https://goo.gl/maps/DBvHPN7VXXp?ll=31.75982140%2C35.22352620&amp;navigate=yes&amp;zoom=16" target="_blank">6 Esther HaMalka St.</a>`,
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// Extract は、アンカータグを含む文字列からURLを1つ取り出し、HTMLエンティティをデコードして返します。
// URLが見つからない場合は入力をそのまま返します。エラーは返しません。
func Extract(value string) string {
	if value == "" {
		return value
	}
	s := strings.TrimSpace(value)

	// 1. 既にプレーンなURLであればそのまま
	if hasScheme(s) && !strings.ContainsAny(s, "<>") {
		return s
	}

	// 2. href 属性から取得 (最初の一致を採用)
	if m := hrefPattern.FindStringSubmatch(s); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		return strings.TrimSpace(html.UnescapeString(raw))
	}

	// 3. フォールバック: 最初に現れる http(s):// から終端文字まで
	if start := firstSchemeIndex(s); start >= 0 {
		end := len(s)
		if j := strings.IndexAny(s[start+1:], urlStoppers); j >= 0 {
			end = start + 1 + j
		}
		return strings.TrimSpace(html.UnescapeString(s[start:end]))
	}

	return value
}

// IsNavigationLink は、URLが Waze (*.waze.com) または Google Maps の短縮リンク (goo.gl/maps) かを判定します。
// 集計表示のためだけに使用され、抽出結果には影響しません。
func IsNavigationLink(rawURL string) bool {
	if !hasScheme(rawURL) {
		return false
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsedURL.Hostname())

	if host == wazeDomain || strings.HasSuffix(host, "."+wazeDomain) {
		return true
	}
	return host == googleMapsHost && strings.HasPrefix(parsedURL.Path, googleMapsPath)
}

// ----------------------------------------------------------------------
// ヘルパー関数
// ----------------------------------------------------------------------

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, schemeHTTP) || strings.HasPrefix(lower, schemeHTTPS)
}

// firstSchemeIndex は http:// と https:// のうち先に現れる位置を返します。見つからなければ -1。
func firstSchemeIndex(s string) int {
	i := strings.Index(s, schemeHTTP)
	j := strings.Index(s, schemeHTTPS)
	switch {
	case i < 0:
		return j
	case j < 0:
		return i
	case j < i:
		return j
	default:
		return i
	}
}
