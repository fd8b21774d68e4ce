package utils

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GeneratePasscode возвращает короткий код доступа команды.
// Код раздаётся командам после верификации оплаты.
func GeneratePasscode() string {
	id := uuid.New().String()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:10])
}

// GenerateUploadKey возвращает ключ объекта в хранилище для загружаемого файла.
func GenerateUploadKey(prefix, ext string) string {
	key := prefix + "/" + uuid.New().String()
	if ext != "" {
		key += "." + strings.TrimPrefix(ext, ".")
	}
	return key
}
