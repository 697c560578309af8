package cache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hkdf"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

// sealInfo разделяет ключ шифрования и ключ поиска (session.HashToken).
const sealInfo = "admin-gateway rotation cache v1"

var errOpen = errors.New("rotation entry cannot be opened")

// sealKey выводит AES-256 ключ из предъявленного refresh-токена.
// Без исходного токена запись в Redis не расшифровать.
func sealKey(refresh string) ([]byte, error) {
	return hkdf.Key(sha256.New, []byte(refresh), nil, sealInfo, 32)
}

func newAEAD(refresh string) (cipher.AEAD, error) {
	key, err := sealKey(refresh)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal шифрует пару: nonce || ciphertext.
func seal(refresh string, pair models.TokenPair) ([]byte, error) {
	aead, err := newAEAD(refresh)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	plain, err := json.Marshal(pair)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	return aead.Seal(nonce, nonce, plain, nil), nil
}

func open(refresh string, box []byte) (models.TokenPair, error) {
	aead, err := newAEAD(refresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("open: %w", err)
	}

	if len(box) < aead.NonceSize() {
		return models.TokenPair{}, errOpen
	}
	nonce, ct := box[:aead.NonceSize()], box[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return models.TokenPair{}, errOpen
	}

	var pair models.TokenPair
	if err := json.Unmarshal(plain, &pair); err != nil {
		return models.TokenPair{}, errOpen
	}
	return pair, nil
}
