package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innometrics/innometrics-backend/internal/service/probe"
	"github.com/innometrics/innometrics-backend/internal/service/server"
)

// apiClient talks to a running server the way the web collector does.
type apiClient struct {
	t     *testing.T
	base  string
	token string
	http  *http.Client
}

func (c *apiClient) call(method, path string, form url.Values) (int, map[string]any) {
	c.t.Helper()

	var req *http.Request

	var err error

	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(context.Background(), method, c.base+path+"?"+form.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(context.Background(), method, c.base+path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	require.NoError(c.t, err)

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	var body map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&body))

	return resp.StatusCode, body
}

// TestServer_Roundtrip registers, logs in, reports activities and reads them back.
//
//nolint:paralleltest // The server replaces the global logger.
func TestServer_Roundtrip(t *testing.T) {
	_, httpAddr, healthAddr, stop := startServer(t)
	defer stop()

	client := &apiClient{t: t, base: "http://" + httpAddr, http: &http.Client{Timeout: 5 * time.Second}}

	status, _ := client.call(http.MethodPost, "/user", url.Values{
		"email": {"ivan@innometrics.guru"}, "password": {"s3cret"}, "name": {"Ivan"}, "surname": {"Ivanov"},
	})
	require.Equal(t, http.StatusOK, status)

	status, body := client.call(http.MethodPost, "/login", url.Values{
		"email": {"ivan@innometrics.guru"}, "password": {"s3cret"},
	})
	require.Equal(t, http.StatusOK, status)

	client.token, _ = body["token"].(string)
	require.NotEmpty(t, client.token)

	batch, err := json.Marshal(map[string]any{"activities": []map[string]any{
		{
			"executable_name": "code", "start_time": "2019-10-01T09:00:00Z", "end_time": "2019-10-01T09:30:00Z",
			"ip_address": "10.90.0.1", "mac_address": "00:1A:2B:3C:4D:5E",
		},
		{
			"executable_name": "firefox", "start_time": "2019-10-01T09:30:00Z", "end_time": "2019-10-01T10:00:00Z",
			"ip_address": "10.90.0.1", "mac_address": "00:1A:2B:3C:4D:5E", "idle_activity": true,
			"browser_url": "https://innometrics.guru", "browser_title": "Innometrics",
		},
	}})
	require.NoError(t, err)

	status, body = client.call(http.MethodPost, "/activity", url.Values{"activity": {string(batch)}})
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, body["activity_id"], 2)

	status, body = client.call(http.MethodGet, "/activity", url.Values{
		"filters": {`{"idle_activity": true}`},
	})
	require.Equal(t, http.StatusOK, status)

	activities, _ := body["activities"].([]any)
	require.Len(t, activities, 1)

	found, _ := activities[0].(map[string]any)
	require.Equal(t, "firefox", found["executable_name"])
	require.Equal(t, "https://innometrics.guru", found["browser_url"])

	require.NoError(t, probe.Run(context.Background(), &probe.Options{
		Address: healthAddr,
		Service: server.HealthService,
		Timeout: time.Second,
	}))

	status, _ = client.call(http.MethodDelete, "/user", url.Values{})
	require.Equal(t, http.StatusOK, status)

	status, _ = client.call(http.MethodGet, "/activity", url.Values{})
	require.Equal(t, http.StatusUnauthorized, status)
}
