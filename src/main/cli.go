package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"spellpaste/src/collections"
	"spellpaste/src/config"
	"spellpaste/src/registry"
	"spellpaste/src/runner"
	"spellpaste/src/singleinstance"
)

// runCLI serves -cast and -list: prefer delegating to a resident instance
// over TCP; fall back to running standalone against the on-disk
// collections.
func runCLI(cfg *config.Config, trigger string, list bool) {
	ctx := context.Background()
	client := singleinstance.NewClient()

	if list {
		delegated, spells, err := client.TryList(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		if !delegated {
			log.Printf("No resident detected, listing standalone")
			reg := standaloneRegistry(cfg)
			spells = reg.List()
		}
		for _, s := range spells {
			if s.Description != "" {
				fmt.Printf("%s\t%s\n", s.Trigger, s.Description)
			} else {
				fmt.Println(s.Trigger)
			}
		}
		return
	}

	input := readPipedStdin()

	delegated, output, err := client.TryCast(ctx, trigger, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cast failed: %v\n", err)
		os.Exit(1)
	}
	if delegated {
		log.Printf("Delegated to resident")
		fmt.Print(output)
		return
	}

	log.Printf("No resident detected, casting standalone")
	reg := standaloneRegistry(cfg)
	sp, err := reg.Lookup(trigger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	output, err = runner.Run(sp.Entry, sp.Dir, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cast failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(output)
}

func standaloneRegistry(cfg *config.Config) *registry.Registry {
	dir := cfg.CollectionsDir
	if dir == "" {
		dir = collections.DefaultDir()
	}
	reg := registry.New()
	reg.Replace(collections.Load(dir))
	return reg
}

// readPipedStdin returns stdin's content when something is piped in; an
// interactive terminal contributes the empty selection.
func readPipedStdin() string {
	st, err := os.Stdin.Stat()
	if err != nil || st.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return string(data)
}
