package bus

import (
	"errors"
	"testing"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); !errors.Is(err, ErrNoRedis) {
		t.Fatalf("want ErrNoRedis, got %v", err)
	}
}

func TestNewRedisBusRequiresLogger(t *testing.T) {
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var b *redisBus
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
