package security

import (
	"fmt"
	"regexp"
	"strings"
)

// SQLSanitizer provides SQL injection protection utilities
type SQLSanitizer struct {
	// 危険なSQLキーワードのパターン
	dangerousPatterns []*regexp.Regexp
}

// NewSQLSanitizer creates a new SQL sanitizer
func NewSQLSanitizer() *SQLSanitizer {
	patterns := []*regexp.Regexp{
		// SQLインジェクション攻撃パターン
		regexp.MustCompile(`(?i)(^|\s)(union|select|insert|update|delete|drop|create|alter|exec|execute|declare|grant|revoke|truncate)\s`),
		regexp.MustCompile(`(?i)(--|/\*|\*/|;)`),
		regexp.MustCompile(`(?i)(xp_|sp_|sys\.|information_schema|pg_)`),
	}

	return &SQLSanitizer{
		dangerousPatterns: patterns,
	}
}

// ValidateSearchQuery validates search queries before they reach the database
func (s *SQLSanitizer) ValidateSearchQuery(query string) error {
	if query == "" {
		return nil
	}

	// 長さチェック
	if len(query) > 500 {
		return fmt.Errorf("search query too long (max: 500 characters)")
	}

	// 危険なパターンをチェック
	for _, pattern := range s.dangerousPatterns {
		if pattern.MatchString(query) {
			return fmt.Errorf("potentially dangerous pattern detected in search query")
		}
	}

	return nil
}

// SanitizeSearchQuery sanitizes search query for safe database operations
func (s *SQLSanitizer) SanitizeSearchQuery(query string) string {
	if query == "" {
		return ""
	}

	// 基本的なサニタイゼーション
	sanitized := strings.TrimSpace(query)

	// LIKEパターンのメタ文字をエスケープ
	sanitized = strings.ReplaceAll(sanitized, `\`, `\\`)
	sanitized = strings.ReplaceAll(sanitized, `%`, `\%`)
	sanitized = strings.ReplaceAll(sanitized, `_`, `\_`)

	// 連続する空白を単一の空白に変換
	sanitized = regexp.MustCompile(`\s+`).ReplaceAllString(sanitized, " ")

	return sanitized
}
