package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "theseus:maze:mirror:lock", Key("mirror"))
}

func TestAcquireFailsWithoutRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	lease, err := New(client, time.Second).Acquire(context.Background(), "mirror")
	assert.Error(t, err)
	assert.Nil(t, lease)
}
