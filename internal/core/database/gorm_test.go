package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitrina/internal/core/config"
	"vitrina/internal/repo"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@127.0.0.1:3306/vitrina?useSSL=false&serverTimezone=UTC&useUnicode=true", "", "")
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/vitrina?charset=utf8mb4&loc=UTC&parseTime=true&tls=false", got)

	got = normalizeMySQLDSN("mysql://127.0.0.1:3306/vitrina", "app", "secret")
	assert.Equal(t, "app:secret@tcp(127.0.0.1:3306)/vitrina?charset=utf8mb4&parseTime=true", got)

	// 已经是 go-sql-driver 格式则保持原样
	raw := "app:secret@tcp(db:3306)/vitrina?parseTime=true"
	assert.Equal(t, raw, normalizeMySQLDSN(raw, "x", "y"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/vitrina", maskDSN("app:secret@tcp(db:3306)/vitrina"))
	assert.Equal(t, "no-credentials", maskDSN("no-credentials"))
}

func TestOpen_Memory(t *testing.T) {
	b, closeFn, err := Open(config.DB{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	_, ok := b.(*repo.MemoryBackend)
	assert.True(t, ok)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, _, err := Open(config.DB{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
