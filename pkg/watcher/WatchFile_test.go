package watcher_test

import (
	"os"
	"path"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/watcher"
)

func TestWatchFile(t *testing.T) {
	watchedFile := path.Join(t.TempDir(), "certificate.pem")
	require.NoError(t, os.WriteFile(watchedFile, []byte("one"), 0644))

	var callbackCount int32
	fileWatcher, err := watcher.WatchFile(watchedFile, func() error {
		atomic.AddInt32(&callbackCount, 1)
		return nil
	})
	require.NoError(t, err)
	defer fileWatcher.Close()

	// several writes in a row debounce into a single callback
	require.NoError(t, os.WriteFile(watchedFile, []byte("two"), 0644))
	require.NoError(t, os.WriteFile(watchedFile, []byte("three"), 0644))
	time.Sleep(time.Millisecond * 300)
	assert.Equal(t, int32(1), atomic.LoadInt32(&callbackCount))

	// a rename-replace rotation is noticed, and so is the write after it
	rotated := watchedFile + ".new"
	require.NoError(t, os.WriteFile(rotated, []byte("four"), 0644))
	require.NoError(t, os.Rename(rotated, watchedFile))
	time.Sleep(time.Millisecond * 300)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&callbackCount), int32(2))

	require.NoError(t, os.WriteFile(watchedFile, []byte("five"), 0644))
	time.Sleep(time.Millisecond * 300)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&callbackCount), int32(3))
}

func TestWatchFileNotFound(t *testing.T) {
	fileWatcher, err := watcher.WatchFile("/not/a/folder/missing.pem", func() error {
		return nil
	})
	assert.Error(t, err)
	assert.Nil(t, fileWatcher)
}
