package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jobportal/jobview/common/logger"
)

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Options{Addr: "127.0.0.1:1"}, logger.Discard())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "failed to connect to redis at 127.0.0.1:1")
}
