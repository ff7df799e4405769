package database

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	got := Config{}.withDefaults()
	if got.MaxIdleConns != 10 || got.MaxOpenConns != 50 || got.ConnMaxLifetime != time.Hour {
		t.Errorf("零值补齐结果不对: %+v", got)
	}

	// 显式设置的值原样保留
	got = Config{MaxIdleConns: 4, MaxOpenConns: 80, ConnMaxLifetime: time.Minute}.withDefaults()
	if got.MaxIdleConns != 4 || got.MaxOpenConns != 80 || got.ConnMaxLifetime != time.Minute {
		t.Errorf("显式值被改写: %+v", got)
	}

	// open 上限不能小于 idle
	got = Config{MaxIdleConns: 20, MaxOpenConns: 5}.withDefaults()
	if got.MaxOpenConns != 20 {
		t.Errorf("MaxOpenConns = %d, want 20", got.MaxOpenConns)
	}
}
