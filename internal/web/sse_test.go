package web_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store/memory"
	"github.com/AmanKajla032004/Aurora-sub000/internal/web"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEPushesDirectoryUpdates(t *testing.T) {
	st := memory.NewStore()
	clock := clockwork.NewRealClock()
	rooms := service.NewRoomService(st, notify.NopSink{}, clock)
	directory := service.NewDirectory(st, service.NewPresenceService(st, clock))

	manager := web.NewSSEManager(directory)
	defer manager.Shutdown()
	rooms.RegisterUpdateCallback(manager.NotifyRoomUpdate)

	server := httptest.NewServer(manager)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/?stream="+web.DirectoryStream, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The subscription races the publish below, so keep mutating the room
	// service until a directory event lands on the stream
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(50 * time.Millisecond):
				_, _, err := rooms.CreateRoom(context.Background(),
					models.Member{ID: "owner1", DisplayName: "Olive"},
					"Study Hall", models.ModeForever, 0, "")
				assert.NoError(t, err)
			}
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	var payload string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			payload = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}

	require.NotEmpty(t, payload, "expected a directory event on the stream")
	assert.Contains(t, payload, "Study Hall")
	assert.Contains(t, payload, "member_count")
}
