package fusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

const serviceSDLQuery = `{ _service { sdl } }`

// fetchSDL asks a running subgraph for its own SDL.
func fetchSDL(ctx context.Context, hc *http.Client, url string) (string, error) {
	if hc == nil {
		hc = http.DefaultClient
	}

	type RawParams struct {
		Query string `json:"query"`
	}
	b, err := json.Marshal(&RawParams{Query: serviceSDLQuery})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response code from %s: %d", url, resp.StatusCode)
	}

	type Resp struct {
		Data struct {
			Service struct {
				SDL string `json:"sdl"`
			} `json:"_service"`
		} `json:"data"`
		Errors gqlerror.List `json:"errors"`
	}

	v := &Resp{}
	err = json.Unmarshal(b, v)
	if err != nil {
		return "", err
	}
	if len(v.Errors) != 0 {
		return "", v.Errors
	}
	if v.Data.Service.SDL == "" {
		return "", fmt.Errorf("sdl fetch from %s failed", url)
	}

	return v.Data.Service.SDL, nil
}
