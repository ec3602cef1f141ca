package captcha

import (
	"strings"
	"testing"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *cache.CaptchaStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewCache(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	store := c.CaptchaStore(5 * time.Minute)
	return New(store), store
}

func TestGenerateAndVerify(t *testing.T) {
	svc, store := newTestService(t)

	id, image, err := svc.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(image, "data:image/png;base64,"))

	answer := store.Get(id, false)
	require.Len(t, answer, length)

	assert.True(t, svc.Verify(id, answer))
	assert.False(t, svc.Verify(id, answer), "answers are single use")
}

func TestVerifyWrongAnswer(t *testing.T) {
	svc, store := newTestService(t)

	id, _, err := svc.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, store.Get(id, false))

	assert.False(t, svc.Verify(id, "wrong"))
	assert.Empty(t, store.Get(id, false))
	assert.False(t, svc.Verify("", "12345"))
	assert.False(t, svc.Verify("unknown", ""))
}
