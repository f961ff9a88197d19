// Command genkey derives and prints an agent identity from a seed
// phrase, or generates a fresh random one.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/foldspace-protocol/foldspace/internal/identity"
)

func main() {
	seed := flag.String("seed", "", "Seed phrase to derive the identity from (random when omitted)")
	index := flag.Int("index", 0, "Key index")
	flag.Parse()

	var (
		id     *identity.Identity
		phrase string
		err    error
	)
	if *seed != "" {
		phrase = *seed
		id, err = identity.FromSeed(phrase, *index)
	} else {
		id, phrase, err = identity.Generate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to derive identity: %v\n", err)
		os.Exit(1)
	}

	if *seed == "" {
		fmt.Printf("Seed phrase:         %s\n", phrase)
	}
	fmt.Printf("Agent address:       %s\n", id.Address())
	fmt.Printf("Public key (base64): %s\n", base64.StdEncoding.EncodeToString(id.PublicKey()))
}
