package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiBase = "/api/assetflow/v1"

type assetflowClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *assetflowClient {
	return &assetflowClient{
		baseURL: serverURL + apiBase,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *assetflowClient) do(method, path string, body any, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if actor := resolvedActor(); actor != "" {
		req.Header.Set("X-User-Principal", actor)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func (c *assetflowClient) getJSON(path string, v any) error {
	return c.do(http.MethodGet, path, nil, v)
}

func (c *assetflowClient) postJSON(path string, body any, v any) error {
	return c.do(http.MethodPost, path, body, v)
}

func (c *assetflowClient) patchJSON(path string, body any, v any) error {
	return c.do(http.MethodPatch, path, body, v)
}
