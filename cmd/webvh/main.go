/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command webvh is a thin, non-interactive wrapper around the
// did:webvh resolver (method/webvh/vdr) and creation API
// (method/webvh/create): the same ambient-CLI-shim role method/web
// plays for did:web in the teacher library, not the reference
// implementation's interactive terminal wizard.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/create"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/vdr"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "resolve":
		err = runResolve(os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "webvh:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: webvh resolve <did-or-url> [flags]")
	fmt.Fprintln(os.Stderr, "       webvh create --address <addr> --doc <file> --signing-key <seed-file> [flags]")
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "resolution timeout")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("resolve requires exactly one identifier argument")
	}

	r := vdr.New(vdr.WithTimeout(*timeout))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	state, meta, err := r.Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	out := struct {
		DIDDocument json.RawMessage `json:"didDocument"`
		Metadata    *vdr.Metadata   `json:"didDocumentMetadata"`
	}{state, meta}

	return writeJSON(os.Stdout, out)
}

// witnessSecretFlag collects repeated -witness-secret <multikey>=<seed-file> flags.
type witnessSecretFlag struct {
	secrets map[string]logentry.Signer
}

func (f *witnessSecretFlag) String() string { return "" }

func (f *witnessSecretFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("witness-secret must be <multikey>=<seed-file>")
	}

	signer, err := loadSigner(parts[1])
	if err != nil {
		return err
	}

	if f.secrets == nil {
		f.secrets = make(map[string]logentry.Signer)
	}

	f.secrets[parts[0]] = signer

	return nil
}

type witnessListFlag struct {
	entries []params.WitnessEntry
}

func (f *witnessListFlag) String() string { return "" }

func (f *witnessListFlag) Set(value string) error {
	f.entries = append(f.entries, params.WitnessEntry{ID: value})
	return nil
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)

	address := fs.String("address", "", "URL or did:webvh:{SCID}:... address")
	docPath := fs.String("doc", "", "path to DID document template JSON")
	signingKeyPath := fs.String("signing-key", "", "path to the raw 32-byte ed25519 seed used to sign the genesis entry")
	signingMultikey := fs.String("signing-multikey", "", "multikey of the signing key (defaults to derived from -signing-key)")
	portable := fs.Bool("portable", false, "mark the DID portable")
	witnessThreshold := fs.Int("witness-threshold", 0, "witness signature threshold (0 disables witnessing)")
	alsoKnownAsWeb := fs.Bool("also-known-as-web", false, "add a did:web alsoKnownAs alias")
	alsoKnownAsSCID := fs.Bool("also-known-as-scid", false, "add a did:scid:vh alsoKnownAs alias")

	var witnesses witnessListFlag

	fs.Var(&witnesses, "witness", "witness multikey (repeatable)")

	var witnessSecrets witnessSecretFlag

	fs.Var(&witnessSecrets, "witness-secret", "<multikey>=<seed-file> (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *address == "" || *docPath == "" || *signingKeyPath == "" {
		return fmt.Errorf("-address, -doc, and -signing-key are required")
	}

	docBytes, err := os.ReadFile(*docPath)
	if err != nil {
		return fmt.Errorf("read DID document template: %w", err)
	}

	signer, derivedMultikey, err := loadSignerAndMultikey(*signingKeyPath)
	if err != nil {
		return err
	}

	mk := *signingMultikey
	if mk == "" {
		mk = derivedMultikey
	}

	effective := &params.Effective{
		UpdateKeys: []string{mk},
		Portable:   *portable,
	}

	if *witnessThreshold > 0 {
		effective.Witness = &params.WitnessConfig{
			Threshold: *witnessThreshold,
			Witnesses: witnesses.entries,
		}
	}

	res, err := create.Create(create.Options{
		Address:         *address,
		SigningMultikey: mk,
		Signer:          signer,
		DIDDocument:     docBytes,
		Parameters:      effective,
		WitnessSecrets:  witnessSecrets.secrets,
		AlsoKnownAsWeb:  *alsoKnownAsWeb,
		AlsoKnownAsSCID: *alsoKnownAsSCID,
	})
	if err != nil {
		return err
	}

	out := struct {
		DID            string            `json:"did"`
		LogEntry       *logentry.Entry   `json:"logEntry"`
		WitnessEntries []json.RawMessage `json:"witnessProofs,omitempty"`
	}{DID: res.DID, LogEntry: res.Entry}

	for _, we := range res.WitnessEntries {
		b, err := json.Marshal(we)
		if err != nil {
			return err
		}

		out.WitnessEntries = append(out.WitnessEntries, b)
	}

	return writeJSON(os.Stdout, out)
}

func loadSigner(seedPath string) (logentry.Signer, error) {
	signer, _, err := loadSignerAndMultikey(seedPath)
	return signer, err
}

func loadSignerAndMultikey(seedPath string) (logentry.Signer, string, error) {
	seed, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key seed: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, "", fmt.Errorf("signing key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)

	return logentry.NewEd25519Signer(priv), canon.Ed25519Multikey(priv.Public().(ed25519.PublicKey)), nil
}

func writeJSON(w *os.File, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
