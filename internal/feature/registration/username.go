package registration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"vitrina/internal/domain"
)

const (
	fallbackUsername = "usuario"
	MaxUsernameLen   = 40
)

// DeriveUsername 小写、去重音，空白和 - _ 变成点，其它字符丢弃，连续的点合并，首尾去点
func DeriveUsername(displayName string) string {
	if out := slug(displayName); out != "" {
		return out
	}
	return fallbackUsername
}

// ChosenUsername 规范化申请人自己填的用户名，留空返回 ""
func ChosenUsername(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	name := slug(raw)
	if name == "" {
		return "", domain.Invalid("username", "el nombre de usuario debe tener letras o números")
	}
	if len(name) > MaxUsernameLen {
		return "", domain.Invalid("username", fmt.Sprintf("máximo %d caracteres", MaxUsernameLen))
	}
	return name, nil
}

func slug(in string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, in)
	if err != nil {
		s = in
	}
	s = strings.ToLower(s)

	var b strings.Builder
	dot := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dot = false
		case r == '.' || r == '-' || r == '_' || unicode.IsSpace(r):
			if !dot && b.Len() > 0 {
				b.WriteByte('.')
				dot = true
			}
		}
	}
	return strings.TrimRight(b.String(), ".")
}

// UniqueUsername base 被占用时依次尝试 base.1, base.2 ...
func UniqueUsername(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		cand := base + "." + strconv.Itoa(i)
		if !taken(cand) {
			return cand
		}
	}
}
