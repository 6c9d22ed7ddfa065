// Package demos строит ссылки на записанные STV-демки пользователя.
// Имя кодируется в base32 (RFC 4648, нижний регистр), как это делает сервер демок.
package demos

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ozfortress/bookerbot/internal/ssc"
)

type Builder struct {
	root   string
	client string
}

func New(root, client string) (*Builder, error) {
	root = strings.TrimRight(root, "/")
	if root == "" {
		return nil, errors.New("demos: root path is empty")
	}
	if client == "" {
		return nil, errors.New("demos: client is empty")
	}
	return &Builder{root: root, client: client}, nil
}

// URL: детерминированная ссылка на демки для fullname (username#discriminator).
func (b *Builder) URL(fullname string) string {
	return b.root + "/" + b.client + "/" + Encode(fullname)
}

// Encode убирает "/", кодирует base32 с паддингом и переводит в нижний регистр.
func Encode(fullname string) string {
	return strings.ToLower(base32.StdEncoding.EncodeToString([]byte(ssc.PathSafe(fullname))))
}

// Decode делает обратную операцию по мере сил. Регистр не важен, паддинг необязателен,
// результат должен быть валидным UTF-8.
func Decode(s string) (string, error) {
	s = strings.TrimRight(strings.ToUpper(s), "=")
	if s == "" {
		return "", errors.New("demos: nothing to decode")
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("demos: decode %q: %w", s, err)
	}
	if len(raw) == 0 || !utf8.Valid(raw) {
		return "", fmt.Errorf("demos: decoded %q is not utf-8", s)
	}
	return string(raw), nil
}
