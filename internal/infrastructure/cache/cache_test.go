package cache

import (
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.CacheConfig{Enabled: false}, time.Hour)
	if err != ErrDisabled {
		t.Errorf("Connect with disabled config: err = %v, want ErrDisabled", err)
	}
}

func TestCloseOnZeroCache(t *testing.T) {
	c := &Cache{}
	if err := c.Close(); err != nil {
		t.Errorf("Close on zero cache: %v", err)
	}
}
