/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr is the resolver facade for did:webvh: it parses an
// identifier, fetches its log (and, concurrently, its witness proof
// collection), replays the chain, checks witness thresholds, and
// selects the requested version, the way method/web's VDR resolves
// did:web but generalized to webvh's log-of-entries model.
package vdr

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/did-go/method/webvh/didurl"
	"github.com/trustbloc/did-go/method/webvh/fetch"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/replay"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
	"github.com/trustbloc/did-go/method/webvh/witness"
)

var logger = log.New("did-go/method/webvh/vdr")

// Metadata accompanies a resolved DID document: its provenance within
// the log and its TTL-derived cache lifetime, per spec §6.
type Metadata struct {
	VersionID   string    `json:"versionId"`
	VersionTime time.Time `json:"versionTime"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	Deactivated bool      `json:"deactivated"`
	ExpiresAt   time.Time `json:"expires,omitempty"`
}

// Option configures a Resolver, in the style of the teacher's
// functional DIDMethodOption.
type Option func(*Resolver)

// WithFetcher overrides the default HTTP fetcher, e.g. for tests.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithTimeout bounds the combined log+witness fetch.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithClock overrides the "now" used for future-versionTime rejection;
// tests use this to replay fixtures anchored to a fixed time.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// Resolver resolves did:webvh identifiers.
type Resolver struct {
	fetcher fetch.Fetcher
	timeout time.Duration
	now     func() time.Time
}

// New constructs a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetch.NewHTTPFetcher(nil),
		timeout: 30 * time.Second,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve parses identifier, retrieves its log and witness proofs
// concurrently, replays the chain, validates witness thresholds, and
// returns the selected version's DID document state and metadata.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (json.RawMessage, *Metadata, error) {
	id, err := didurl.Parse(identifier)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		logBytes     []byte
		witnessBytes []byte
		witnessFound bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := r.fetcher.FetchLog(gctx, id.RenderHTTPURL(""))
		if err != nil {
			return err
		}

		logBytes = b

		return nil
	})

	g.Go(func() error {
		b, found, err := r.fetcher.FetchWitnessProofs(gctx, id.WitnessFileURL())
		if err != nil {
			return err
		}

		witnessBytes, witnessFound = b, found

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, webvherr.Wrap(webvherr.NetworkError, "fetch did:webvh log", err)
	}

	entries, err := parseLog(logBytes)
	if err != nil {
		return nil, nil, err
	}

	result, err := replay.Replay(entries, r.now())
	if err != nil {
		return nil, nil, err
	}

	if result.Truncated {
		logger.Debugf("log for %s truncated at entry %d", identifier, len(result.Entries))
	}

	if witnessFound {
		if err := r.checkWitnessThresholds(result, witnessBytes); err != nil {
			return nil, nil, err
		}
	} else if lastRequiresWitness(result) {
		return nil, nil, webvherr.New(webvherr.WitnessProofError, "log requires witnessing but no witness proof file was found")
	}

	selected, meta, err := selectVersion(result, id)
	if err != nil {
		return nil, nil, err
	}

	return selected.Entry.State, meta, nil
}

func parseLog(raw []byte) ([]*logentry.Entry, error) {
	lines := splitJSONLines(raw)

	entries := make([]*logentry.Entry, 0, len(lines))

	for _, line := range lines {
		var e logentry.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, webvherr.Wrap(webvherr.LogEntryError, "parse log entry", err)
		}

		entries = append(entries, &e)
	}

	if len(entries) == 0 {
		return nil, webvherr.New(webvherr.NotFound, "log is empty")
	}

	return entries, nil
}

func splitJSONLines(raw []byte) [][]byte {
	var lines [][]byte

	start := 0

	for i, b := range raw {
		if b == '\n' {
			if i > start {
				lines = append(lines, raw[start:i])
			}

			start = i + 1
		}
	}

	if start < len(raw) {
		lines = append(lines, raw[start:])
	}

	return lines
}

func lastRequiresWitness(result *replay.Result) bool {
	if len(result.Entries) == 0 {
		return false
	}

	return result.Entries[len(result.Entries)-1].Effective.ActiveWitness != nil
}

func (r *Resolver) checkWitnessThresholds(result *replay.Result, raw []byte) error {
	var wireEntries []*witness.Entry
	if err := json.Unmarshal(raw, &wireEntries); err != nil {
		return webvherr.Wrap(webvherr.WitnessProofError, "parse witness proof file", err)
	}

	collection := witness.NewCollection()
	if err := collection.LoadEntries(wireEntries, nil); err != nil {
		return err
	}

	highest := len(result.Entries)

	for _, ve := range result.Entries {
		n, err := ve.Entry.VersionNumber()
		if err != nil {
			return err
		}

		if err := collection.RequireValid(ve.Effective.ActiveWitness, ve.Entry.VersionID, n, highest); err != nil {
			return err
		}
	}

	return nil
}

func selectVersion(result *replay.Result, id *didurl.Identifier) (*replay.ValidatedEntry, *Metadata, error) {
	entries := result.Entries
	if len(entries) == 0 {
		return nil, nil, webvherr.New(webvherr.NotFound, "no entries validated")
	}

	selected := entries[len(entries)-1]

	switch {
	case id.VersionIDSelector != "":
		found := false

		for _, ve := range entries {
			if ve.Entry.VersionID == id.VersionIDSelector {
				selected = ve
				found = true

				break
			}
		}

		if !found {
			return nil, nil, webvherr.New(webvherr.NotFound, "versionId not found in log")
		}
	case id.VersionNumberSelector != nil:
		found := false

		for _, ve := range entries {
			n, err := ve.Entry.VersionNumber()
			if err != nil {
				return nil, nil, err
			}

			if uint64(n) == *id.VersionNumberSelector {
				selected = ve
				found = true

				break
			}
		}

		if !found {
			return nil, nil, webvherr.New(webvherr.NotFound, "versionNumber not found in log")
		}
	case id.VersionTimeSelector != nil:
		found := false

		for _, ve := range entries {
			if ve.Entry.VersionTime.After(*id.VersionTimeSelector) {
				break
			}

			selected = ve
			found = true
		}

		if !found {
			return nil, nil, webvherr.New(webvherr.NotFound, "no entry at or before versionTime")
		}
	}

	// spec §4.7 step 5: a versionTime bound combined with an id/number
	// selector must reject a selection newer than the time bound.
	if id.VersionTimeSelector != nil && (id.VersionIDSelector != "" || id.VersionNumberSelector != nil) {
		if selected.Entry.VersionTime.After(*id.VersionTimeSelector) {
			return nil, nil, webvherr.New(webvherr.NotFound, "selected version is newer than versionTime")
		}
	}

	meta := &Metadata{
		VersionID:   selected.Entry.VersionID,
		VersionTime: selected.Entry.VersionTime,
		Created:     result.FirstTimestamp,
		Updated:     selected.Entry.VersionTime,
		Deactivated: result.Deactivated,
	}

	if selected.Effective.TTL > 0 {
		meta.ExpiresAt = result.LastTimestamp.Add(time.Duration(selected.Effective.TTL) * time.Second)
	}

	return selected, meta, nil
}
