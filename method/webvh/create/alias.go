/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package create

import (
	"encoding/json"
	"strings"

	"github.com/trustbloc/did-go/method/webvh/didurl"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

const scidAliasMethod = "did:scid:vh:1:"

// addAlsoKnownAs injects the did:web and/or did:scid:vh portability
// aliases of webvhDID into doc's alsoKnownAs array, grounded on the
// reference implementation's add_web_also_known_as/add_scid_also_known_as:
// both are idempotent and append to whatever alsoKnownAs already holds.
func addAlsoKnownAs(doc json.RawMessage, webvhDID string, addWeb, addSCID bool) (json.RawMessage, error) {
	if !addWeb && !addSCID {
		return doc, nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, webvherr.Wrap(webvherr.DIDError, "unmarshal DID document for alsoKnownAs", err)
	}

	id, err := didurl.Parse(webvhDID)
	if err != nil {
		return nil, err
	}

	if addWeb {
		if err := insertAlias(m, webAliasOf(id)); err != nil {
			return nil, err
		}
	}

	if addSCID {
		if err := insertAlias(m, scidAliasMethod+id.SCID); err != nil {
			return nil, err
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.DIDError, "marshal DID document with alsoKnownAs", err)
	}

	return out, nil
}

func webAliasOf(id *didurl.Identifier) string {
	host := id.Domain
	if id.Port != "" {
		host += "%3A" + id.Port
	}

	segments := append([]string{host}, id.PathSegments...)

	return "did:web:" + strings.Join(segments, ":")
}

func insertAlias(doc map[string]interface{}, alias string) error {
	existing, ok := doc["alsoKnownAs"]
	if !ok {
		doc["alsoKnownAs"] = []interface{}{alias}
		return nil
	}

	aliases, ok := existing.([]interface{})
	if !ok {
		return webvherr.New(webvherr.DIDError, "alsoKnownAs is not an array")
	}

	for _, a := range aliases {
		if s, ok := a.(string); ok && s == alias {
			return nil
		}
	}

	doc["alsoKnownAs"] = append(aliases, alias)

	return nil
}
