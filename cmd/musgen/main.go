package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	"github.com/sievekit/sieve/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// If we're in the core subpackage, cd up to project root
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/sievekit/sieve/core"),
	)
	if err != nil {
		panic(err)
	}

	if err := g.AddStruct(reflect.TypeFor[core.DocumentRecord]()); err != nil {
		panic(err)
	}
	if err := g.AddStruct(reflect.TypeFor[core.Artifact]()); err != nil {
		panic(err)
	}
	if err := g.AddStruct(reflect.TypeFor[core.CacheEntry]()); err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile("./core/records_mus.gen.go", bs, 0644); err != nil {
		panic(err)
	}
}
