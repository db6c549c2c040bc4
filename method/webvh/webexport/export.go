/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package webexport converts a resolved did:webvh DID document into
// its did:web-addressed equivalent, per spec §6's export contract:
// the top-level id is rewritten to did:web (other occurrences of the
// did:webvh identifier inside the document are left as-is), the original
// did:webvh identifier is preserved as controller and in alsoKnownAs,
// and implicit #whois/#files services are synthesized if the document
// doesn't already declare them. Grounded on original_source's
// to_web_did/update_also_known_as/update_implicit_services.
package webexport

import (
	"encoding/json"
	"strings"

	"github.com/trustbloc/did-go/method/webvh/didurl"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

const (
	whoisFilename = "whois.vp"
	whoisSuffix   = "#whois"
	filesSuffix   = "#files"
)

// ToWebDID converts state, a resolved did:webvh document, into the
// did:web-addressed document a verifier would fetch from the plain
// https://<domain>/<path>/did.json location.
func ToWebDID(state json.RawMessage) (json.RawMessage, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(state, &doc); err != nil {
		return nil, webvherr.Wrap(webvherr.DIDError, "unmarshal DID document state", err)
	}

	oldDID, ok := doc["id"].(string)
	if !ok || oldDID == "" {
		return nil, webvherr.New(webvherr.DIDError, "DID document has no id attribute")
	}

	id, err := didurl.Parse(oldDID)
	if err != nil {
		return nil, err
	}

	newDID := webDIDOf(id)

	doc["id"] = newDID
	doc["controller"] = oldDID

	if err := updateAlsoKnownAs(doc, oldDID, newDID); err != nil {
		return nil, err
	}

	if err := updateImplicitServices(doc, newDID, id); err != nil {
		return nil, err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.DIDError, "marshal did:web document", err)
	}

	return out, nil
}

func webDIDOf(id *didurl.Identifier) string {
	host := id.Domain
	if id.Port != "" {
		host += "%3A" + id.Port
	}

	segments := append([]string{host}, id.PathSegments...)

	return "did:web:" + strings.Join(segments, ":")
}

func baseWebURL(id *didurl.Identifier) string {
	scheme := "https"
	if id.Domain == "localhost" {
		scheme = "http"
	}

	host := id.Domain
	if id.Port != "" {
		host += ":" + id.Port
	}

	path := ""
	if len(id.PathSegments) > 0 {
		path = strings.Join(id.PathSegments, "/") + "/"
	}

	return scheme + "://" + host + "/" + path
}

func updateAlsoKnownAs(doc map[string]interface{}, oldDID, newDID string) error {
	existing, ok := doc["alsoKnownAs"]
	if !ok {
		doc["alsoKnownAs"] = []interface{}{oldDID}
		return nil
	}

	aliases, ok := existing.([]interface{})
	if !ok {
		return webvherr.New(webvherr.DIDError, "alsoKnownAs is not an array")
	}

	hasWebVH := false

	newAliases := make([]interface{}, 0, len(aliases)+1)

	for _, a := range aliases {
		s, ok := a.(string)
		if !ok {
			continue
		}

		switch s {
		case newDID:
			// the synthesized did:web id itself never belongs in alsoKnownAs.
			continue
		case oldDID:
			hasWebVH = true

			newAliases = append(newAliases, a)
		default:
			newAliases = append(newAliases, a)
		}
	}

	if !hasWebVH {
		newAliases = append(newAliases, oldDID)
	}

	doc["alsoKnownAs"] = newAliases

	return nil
}

func updateImplicitServices(doc map[string]interface{}, newDID string, id *didurl.Identifier) error {
	base := baseWebURL(id)

	whois := map[string]interface{}{
		"@context":        "https://identity.foundation/linked-vp/contexts/v1",
		"id":              newDID + whoisSuffix,
		"type":            "LinkedVerifiablePresentation",
		"serviceEndpoint": base + whoisFilename,
	}

	files := map[string]interface{}{
		"id":              newDID + filesSuffix,
		"type":            "relativeRef",
		"serviceEndpoint": base,
	}

	existing, ok := doc["service"]
	if !ok {
		doc["service"] = []interface{}{whois, files}
		return nil
	}

	services, ok := existing.([]interface{})
	if !ok {
		return webvherr.New(webvherr.DIDError, "service is not an array")
	}

	hasWhois, hasFiles := false, false

	for _, s := range services {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}

		svcID, _ := m["id"].(string)

		switch {
		case strings.HasSuffix(svcID, whoisSuffix):
			hasWhois = true
		case strings.HasSuffix(svcID, filesSuffix):
			hasFiles = true
		}
	}

	if !hasWhois {
		services = append(services, whois)
	}

	if !hasFiles {
		services = append(services, files)
	}

	doc["service"] = services

	return nil
}
