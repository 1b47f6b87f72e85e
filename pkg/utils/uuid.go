package utils

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// GenerateRunID 生成单调可排序的运行追踪ID
func GenerateRunID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
