/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fetch retrieves the two artifacts a did:webvh resolution
// needs over HTTP: the append-only log (did.jsonl) and, optionally,
// the witness proof collection (did-witness.json).
package fetch

import (
	"context"
	"io"
	"net/http"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

var logger = log.New("did-go/method/webvh/fetch")

// Fetcher retrieves the raw bytes of a did:webvh log and, if present,
// its witness proof file.
type Fetcher interface {
	FetchLog(ctx context.Context, url string) ([]byte, error)
	FetchWitnessProofs(ctx context.Context, url string) ([]byte, bool, error)
}

// HTTPFetcher is the default net/http-based Fetcher.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a Fetcher backed by client, or http.DefaultClient
// if client is nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{Client: client}
}

// FetchLog retrieves the did.jsonl log. A non-200 response or network
// error is fatal to resolution.
func (f *HTTPFetcher) FetchLog(ctx context.Context, url string) ([]byte, error) {
	body, status, err := f.get(ctx, url)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.NetworkError, "fetch did log", err)
	}

	if status != http.StatusOK {
		return nil, webvherr.New(webvherr.NotFound, "did log not found, status "+http.StatusText(status))
	}

	return body, nil
}

// FetchWitnessProofs retrieves did-witness.json. Neither its absence
// nor a failed fetch (network error or non-200 status) is fatal: the
// second return value reports whether the file was retrieved, and
// callers proceed with an empty witness proof collection when it is
// not (the log may carry no witness requirement at all).
func (f *HTTPFetcher) FetchWitnessProofs(ctx context.Context, url string) ([]byte, bool, error) {
	body, status, err := f.get(ctx, url)
	if err != nil {
		logger.Debugf("witness proof fetch failed, proceeding without: %v", err)
		return nil, false, nil
	}

	if status == http.StatusNotFound {
		return nil, false, nil
	}

	if status != http.StatusOK {
		logger.Debugf("witness proof fetch returned status %s, proceeding without", http.StatusText(status))
		return nil, false, nil
	}

	return body, true, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	defer closeBody(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		logger.Debugf("failed to close response body: %v", err)
	}
}
