// Package keycipher 用于加密存储第三方 AI 服务的 API Key
//
// 密文格式为 hex(nonce):hex(tag):hex(ciphertext)，算法 AES-256-GCM，
// 16 字节 nonce，密钥由 scrypt 从服务端密钥派生。
package keycipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/scrypt"
)

const (
	nonceSize = 16
	tagSize   = 16
	keySize   = 32

	// 与历史数据保持一致，修改会导致已有密文无法解密
	scryptSalt = "salt"
	scryptN    = 16384
	scryptR    = 8
	scryptP    = 1
)

var (
	ErrEmptySecret   = errors.New("keycipher: encryption secret is empty")
	ErrMalformed     = errors.New("keycipher: malformed ciphertext")
	ErrAuthFailed    = errors.New("keycipher: message authentication failed")
	ErrInvalidLegacy = errors.New("keycipher: invalid legacy encoding")
)

// Cipher 加解密器，密钥只派生一次
type Cipher struct {
	aead cipher.AEAD
}

// Decrypted 解密结果，Err 非空表示该密文不可读
type Decrypted struct {
	Value string
	Err   error
}

// OK 是否解密成功
func (d Decrypted) OK() bool {
	return d.Err == nil
}

// New 创建加解密器，secret 不能为空
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key, err := scrypt.Key([]byte(secret), []byte(scryptSalt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt 加密明文，每次使用新的随机 nonce
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt 解密密文，失败时不 panic，也不向上抛错
func (c *Cipher) Decrypt(blob string) Decrypted {
	parts := strings.Split(blob, ":")
	if len(parts) != 3 {
		return decodeLegacy(blob)
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return failed(ErrMalformed)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return failed(ErrMalformed)
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return failed(ErrMalformed)
	}

	plain, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return failed(ErrAuthFailed)
	}

	return Decrypted{Value: string(plain)}
}

// decodeLegacy 兼容早期 base64 存储的数据
func decodeLegacy(blob string) Decrypted {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(blob)
	}
	if err != nil || !utf8.Valid(raw) {
		return failed(ErrInvalidLegacy)
	}
	return Decrypted{Value: string(raw)}
}

func failed(err error) Decrypted {
	log.Warn().Err(err).Msg("api key decryption failed")
	return Decrypted{Err: err}
}

// Mask 生成用于展示的掩码：前 4 位 + •••• + 后 4 位
func Mask(key string) string {
	if len(key) <= 8 {
		return "••••••••"
	}
	return key[:4] + "••••" + key[len(key)-4:]
}
