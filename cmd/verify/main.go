package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/anon-signal/memberproof/config"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
	"github.com/anon-signal/memberproof/signal"
)

// This driver demos the verifier-key export/import round trip from
// signal/keys.go: a prover builds a demo signal, exports just its verifier
// key (the shape a verifying party actually needs), re-imports it from
// those bytes, and checks the signal against the reimported key.
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

	var buf bytes.Buffer
	if err := pk.VerifierKey().Export(&buf); err != nil {
		log.Fatalf("export verifier key: %v", err)
	}

	vk, err := signal.ImportVerifierKey(&buf, signal.SemaphoreVariant, accessSet.Height(), accessSet.CapHeight())
	if err != nil {
		log.Fatalf("import verifier key: %v", err)
	}

	ok, err := signal.Verify(vk, ctx, sig, accessSet.RootCap())
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	fmt.Printf("signal verifies against the reimported verifier key: %v\n", ok)
}
