package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/anon-signal/memberproof/config"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
	"github.com/anon-signal/memberproof/signal"
)

// emitResult is the JSON shape written to stdout: the signal's public
// fields (nullifier, context, cap), with no identity secrets. It carries no
// proof, so it is not by itself enough to re-check the signal.
type emitResult struct {
	Nullifier [4]string   `json:"nullifier"`
	Context   [4]string   `json:"context"`
	Cap       [][4]string `json:"cap"`
}

// This driver demos a single Emit call: it builds a throwaway demo access
// set, picks one member, and prints the resulting signal's public fields.
// The proof itself is not serialized here — see cmd/export for a
// Solidity-ready fixture that does carry the proof bytes.
func main() {
	identities := make([]signal.Identity, 1<<config.DemoHeight)
	leaves := make([]field.Digest, len(identities))
	for i := range identities {
		id, err := signal.GenerateIdentity()
		if err != nil {
			log.Fatalf("generate identity: %v", err)
		}
		identities[i] = id
		leaves[i] = signal.Commit(id)
	}

	accessSet, err := merkleset.NewAccessSet(leaves, config.DemoCapHeight)
	if err != nil {
		log.Fatalf("build access set: %v", err)
	}

	pk, err := signal.BuildCircuit(accessSet.Height(), accessSet.CapHeight())
	if err != nil {
		log.Fatalf("build circuit: %v", err)
	}

	ctx, err := field.RandomDigest()
	if err != nil {
		log.Fatalf("random context: %v", err)
	}

	const index = 0
	sig, err := signal.Emit(pk, identities[index], ctx, accessSet, index)
	if err != nil {
		log.Fatalf("emit: %v", err)
	}

	ok, err := signal.Verify(pk.VerifierKey(), ctx, sig, accessSet.RootCap())
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	fmt.Fprintf(os.Stderr, "freshly emitted signal verifies: %v\n", ok)

	result := emitResult{Cap: make([][4]string, len(accessSet.RootCap()))}
	for i, e := range sig.Nullifier {
		result.Nullifier[i] = fmt.Sprintf("0x%064x", e)
	}
	for i, e := range ctx {
		result.Context[i] = fmt.Sprintf("0x%064x", e)
	}
	for i, entry := range accessSet.RootCap() {
		for j, e := range entry {
			result.Cap[i][j] = fmt.Sprintf("0x%064x", e)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
