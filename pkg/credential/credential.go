// Package credential 生成登录标识与临时密码（crypto/rand）
package credential

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	letters        = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	digits         = "23456789"
	identAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 去除易混淆字符 0/O/1/I
	identSuffixLen = 6
)

func pick(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

// Password 生成指定长度的随机密码（保证至少包含一个字母和一个数字）
func Password(length int) (string, error) {
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// Identifier 生成 "<PREFIX>-XXXXXX" 形式的登录标识
// 唯一性由数据库唯一索引兜底，调用方在冲突时重试
func Identifier(prefix string) (string, error) {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(strings.ToUpper(prefix))
		b.WriteByte('-')
	}
	for i := 0; i < identSuffixLen; i++ {
		c, err := pick(identAlphabet)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
