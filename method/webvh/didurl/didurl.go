/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didurl implements the bidirectional mapping between
// did:webvh identifier strings and their HTTP(S) resolution location,
// including the did.jsonl/whois routing and the versionId/versionTime/
// versionNumber query selectors. It generalizes the did:web mapping
// used by method/web's parseDIDWeb to the webvh identifier shape.
package didurl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// Kind distinguishes the two routable resources a webvh identifier
// can address.
type Kind int

const (
	// DIDDoc addresses did.jsonl (the log).
	DIDDoc Kind = iota
	// WhoIs addresses the /whois endpoint.
	WhoIs
)

const (
	didPrefix      = "did:webvh:"
	method         = "webvh"
	wellKnownPath  = ".well-known"
	whoisSegment   = "whois"
	logFilename    = "did.jsonl"
	witnessFile    = "did-witness.json"
	whoisFilename  = "whois.vp"
	encodedColon   = "%3A"
	localhostHost  = "localhost"
	paramVersionID = "versionId"
	paramVerTime   = "versionTime"
	paramVerNum    = "versionNumber"
)

// Identifier is the parsed form of a did:webvh identifier, produced
// either from DID-URL syntax or from an equivalent HTTP(S) URL.
type Identifier struct {
	SCID         string
	Domain       string
	Port         string
	PathSegments []string
	Fragment     string
	Query        map[string]string
	Kind         Kind

	VersionIDSelector     string
	VersionTimeSelector   *time.Time
	VersionNumberSelector *uint64
}

// Parse parses identifier, accepting either did:webvh DID-URL syntax
// or an http(s):// URL previously rendered by RenderHTTPURL.
func Parse(identifier string) (*Identifier, error) {
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		return parseHTTPURL(identifier)
	}

	return parseDIDForm(identifier)
}

func parseDIDForm(identifier string) (*Identifier, error) {
	rest := identifier

	if !strings.HasPrefix(rest, "did:") {
		return nil, webvherr.New(webvherr.InvalidMethodIdentifier, "not a DID: missing did: prefix")
	}

	fragment := ""
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		fragment = rest[i+1:]
		rest = rest[:i]
	}

	rawQuery := ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rawQuery = rest[i+1:]
		rest = rest[:i]
	}

	if !strings.HasPrefix(rest, didPrefix) {
		parts := strings.SplitN(rest, ":", 3)
		if len(parts) < 2 || parts[0] != "did" {
			return nil, webvherr.New(webvherr.InvalidMethodIdentifier, "not a DID")
		}

		return nil, webvherr.New(webvherr.UnsupportedMethod, fmt.Sprintf("unsupported DID method %q", parts[1]))
	}

	body := strings.TrimPrefix(rest, didPrefix)
	segments := strings.Split(body, ":")

	if len(segments) < 2 {
		return nil, webvherr.New(webvherr.InvalidMethodIdentifier, "did:webvh identifier missing scid or host")
	}

	scid := segments[0]
	hostSeg := segments[1]
	pathSegments := segments[2:]

	domain, port, err := splitHostPort(hostSeg)
	if err != nil {
		return nil, err
	}

	kind := DIDDoc

	if len(pathSegments) > 0 && pathSegments[len(pathSegments)-1] == whoisSegment {
		kind = WhoIs
		pathSegments = pathSegments[:len(pathSegments)-1]
	}

	id := &Identifier{
		SCID:         scid,
		Domain:       domain,
		Port:         port,
		PathSegments: pathSegments,
		Fragment:     fragment,
		Kind:         kind,
	}

	if err := id.applyQuery(rawQuery); err != nil {
		return nil, err
	}

	return id, nil
}

func splitHostPort(hostSeg string) (domain, port string, err error) {
	if !strings.Contains(hostSeg, encodedColon) {
		return hostSeg, "", nil
	}

	parts := strings.SplitN(hostSeg, encodedColon, 2)

	if _, convErr := strconv.ParseUint(parts[1], 10, 32); convErr != nil {
		return "", "", webvherr.Wrap(webvherr.InvalidMethodIdentifier, "invalid port in did:webvh host segment", convErr)
	}

	return parts[0], parts[1], nil
}

func (id *Identifier) applyQuery(raw string) error {
	id.Query = map[string]string{}

	if raw == "" {
		return nil
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return webvherr.New(webvherr.DIDError, fmt.Sprintf("malformed query pair %q", pair))
		}

		key, value := kv[0], kv[1]
		id.Query[key] = value

		switch key {
		case paramVersionID:
			id.VersionIDSelector = value
		case paramVerTime:
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return webvherr.Wrap(webvherr.DIDError, "invalid versionTime selector", err)
			}

			id.VersionTimeSelector = &t
		case paramVerNum:
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return webvherr.Wrap(webvherr.DIDError, "invalid versionNumber selector", err)
			}

			id.VersionNumberSelector = &n
		}
	}

	return nil
}

func parseHTTPURL(raw string) (*Identifier, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.DIDError, "parse http(s) URL", err)
	}

	domain := u.Hostname()
	port := u.Port()

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	kind := DIDDoc

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		switch last {
		case logFilename, witnessFile:
			segments = segments[:len(segments)-1]
		case whoisFilename:
			kind = WhoIs
			segments = segments[:len(segments)-1]
		}
	}

	if len(segments) > 0 && segments[0] == wellKnownPath {
		segments = segments[1:]
	}

	id := &Identifier{
		Domain:       domain,
		Port:         port,
		PathSegments: segments,
		Fragment:     u.Fragment,
		Kind:         kind,
	}

	if err := id.applyQuery(u.RawQuery); err != nil {
		return nil, err
	}

	return id, nil
}

// RenderHTTPURL reconstitutes the HTTP(S) fetch location for id.
// filenameOverride, if non-empty, replaces the default filename
// (did.jsonl, or whois.vp for a WhoIs identifier).
func (id *Identifier) RenderHTTPURL(filenameOverride string) string {
	scheme := "https"
	if id.Domain == localhostHost {
		scheme = "http"
	}

	host := id.Domain
	if id.Port != "" {
		host = host + ":" + id.Port
	}

	filename := logFilename
	if id.Kind == WhoIs {
		filename = whoisFilename
	}

	if filenameOverride != "" {
		filename = filenameOverride
	}

	segments := id.PathSegments
	if len(segments) == 0 {
		segments = []string{wellKnownPath}
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, host, strings.Join(segments, "/"), filename)
}

// WitnessFileURL returns the HTTP(S) location of did-witness.json for
// the same resolution location as id.
func (id *Identifier) WitnessFileURL() string {
	return id.RenderHTTPURL(witnessFile)
}

// RenderDID renders id back into did:webvh DID-URL syntax, the
// inverse of Parse for the DID-form input path.
func (id *Identifier) RenderDID() string {
	host := id.Domain
	if id.Port != "" {
		host = host + encodedColon + id.Port
	}

	parts := append([]string{didPrefix + id.SCID, host}, id.PathSegments...)
	out := strings.Join(parts, ":")

	if id.Kind == WhoIs {
		out += ":" + whoisSegment
	}

	if len(id.Query) > 0 {
		out += "?" + id.encodeQuery()
	}

	if id.Fragment != "" {
		out += "#" + id.Fragment
	}

	return out
}

func (id *Identifier) encodeQuery() string {
	pairs := make([]string, 0, len(id.Query))

	for _, key := range []string{paramVersionID, paramVerTime, paramVerNum} {
		if v, ok := id.Query[key]; ok {
			pairs = append(pairs, key+"="+v)
		}
	}

	return strings.Join(pairs, "&")
}
