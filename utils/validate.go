package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	phoneRe    = regexp.MustCompile(`^\d{11}$`)
	digitsRe   = regexp.MustCompile(`^\d+$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// MinPasswordLength 注册和修改密码的最小长度
const MinPasswordLength = 8

// DateLayout 表单日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// StripNonDigits 去掉所有非数字字符，"(84) 99999-8888" -> "84999998888"
func StripNonDigits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// ValidatePhone 去掉格式字符后必须是 11 位数字（DDD + 9 位号码）
func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(StripNonDigits(phone))
}

func IsDigits(s string) bool {
	return digitsRe.MatchString(s)
}

// ParseDate 严格按 YYYY-MM-DD 解析，拒绝 2001-02-30 这类不存在的日期
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !dateRe.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeAt 计算 birth 在 now 那天的周岁
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func ValidateEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// StrongPassword 至少 8 位，同时包含小写字母、大写字母和数字
func StrongPassword(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
