package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var codeRe = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// NormalizeCode 规范化访问码：去空格并统一大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCodeFormat 校验访问码格式（XXXX-XXXX-XXXX）
// 只做格式预检，存在性由存储层判断
func ValidateCodeFormat(code string) error {
	if code == "" {
		return fmt.Errorf("code is empty")
	}
	if !codeRe.MatchString(code) {
		return fmt.Errorf("invalid code format: %s", code)
	}
	return nil
}

// 允许上传的文件扩展名
var allowedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// ValidateUpload 校验上传文件的类型和大小
func ValidateUpload(filename string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file type: %s", ext)
	}
	if size <= 0 {
		return fmt.Errorf("file is empty: %s", filename)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file too large: %s (%d bytes, max %d)", filename, size, maxBytes)
	}
	return nil
}
