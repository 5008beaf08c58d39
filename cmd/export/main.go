package main

import (
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/anon-signal/memberproof/config"
	"github.com/anon-signal/memberproof/field"
	"github.com/anon-signal/memberproof/merkleset"
	"github.com/anon-signal/memberproof/signal"
)

// This driver is a self-contained fixture demo, not a production export
// path: with no on-disk key/identity storage, it generates a throwaway
// demo access set or deposit tree, runs a dev setup, and exports one
// proof fixture.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "semaphore":
		runSemaphore()
	case "tornado":
		runTornado()
	default:
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runSemaphore() {
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
	jsonOut, err := signal.ExportProofFixture(pk, identities[index], ctx, accessSet, index)
	if err != nil {
		log.Fatalf("export proof fixture: %v", err)
	}

	if err := os.WriteFile("semaphore_fixture.json", jsonOut, 0644); err != nil {
		log.Fatalf("write fixture file: %v", err)
	}
	fmt.Println("Fixture written to semaphore_fixture.json")
}

func runTornado() {
	tree := merkleset.NewFixedDepthSet(config.DemoDepth, big.NewInt(0))
	pk, err := signal.BuildWithdrawCircuit(config.DemoDepth)
	if err != nil {
		log.Fatalf("build withdraw circuit: %v", err)
	}

	id, err := signal.GenerateIdentity()
	if err != nil {
		log.Fatalf("generate identity: %v", err)
	}
	topic := signal.DenominationTopic(config.TornadoDenomination)

	jsonOut, err := signal.ExportWithdrawFixture(pk, id, topic, tree)
	if err != nil {
		log.Fatalf("export withdraw fixture: %v", err)
	}

	if err := os.WriteFile("tornado_fixture.json", jsonOut, 0644); err != nil {
		log.Fatalf("write fixture file: %v", err)
	}
	fmt.Println("Fixture written to tornado_fixture.json")
}

func printUsage() {
	fmt.Println(`Usage: go run ./cmd/export <circuit>

Available circuits: semaphore, tornado

Generates a throwaway demo access set/deposit tree, runs a dev setup, and
writes one proof fixture as JSON. Not a production key-management tool.`)
}
