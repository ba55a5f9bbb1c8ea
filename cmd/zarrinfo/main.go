// Diagnostic tool for inspecting a Zarr hierarchy's structure.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/zarrio/zarr/internal/store"
	"github.com/zarrio/zarr/zarr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: zarrinfo <path-or-url>")
		os.Exit(1)
	}

	target := os.Args[1]
	fmt.Printf("=== Analyzing %s ===\n\n", target)

	st, err := openStore(target)
	if err != nil {
		fmt.Printf("ERROR: failed to open store: %v\n", err)
		os.Exit(1)
	}

	h, err := zarr.Open(st)
	if err != nil {
		fmt.Printf("ERROR: failed to open hierarchy: %v\n", err)
		os.Exit(1)
	}

	caps := st.Capabilities()
	fmt.Printf("Store capabilities: write=%v consolidated=%v\n\n", caps.SupportsWrites, caps.SupportsConsolidatedMeta)

	switch root := h.Root().(type) {
	case *zarr.Array:
		printArray(root, "", 0)
	case *zarr.Group:
		walkGroup(root, "", 0)
	}
}

func openStore(target string) (store.Store, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return store.NewHTTP(target)
	}
	return store.NewLocalFS(target)
}

func walkGroup(g *zarr.Group, indent string, depth int) {
	if depth > 32 {
		fmt.Printf("%s[MAX DEPTH REACHED]\n", indent)
		return
	}

	groups := g.Groups()
	arrays := g.Arrays()
	fmt.Printf("%sGroup %q:\n", indent, g.Path())
	fmt.Printf("%s  Attrs: %v\n", indent, g.Attrs())

	if len(groups) == 0 && len(arrays) == 0 && depth > 0 {
		fmt.Printf("%s  [EMPTY]\n", indent)
	}

	for _, path := range arrays {
		n, err := g.Resolve(path)
		if err != nil || n == nil {
			continue
		}
		if arr, ok := n.(*zarr.Array); ok {
			printArray(arr, indent+"  ", depth+1)
		}
	}
	for _, name := range childNames(g, groups) {
		child, err := g.Get(name)
		if err != nil {
			continue
		}
		if sub, ok := child.(*zarr.Group); ok {
			walkGroup(sub, indent+"  ", depth+1)
		}
	}
}

// childNames trims the full group paths Groups() returns down to the
// direct-child names Get expects, in the same order.
func childNames(g *zarr.Group, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p[strings.LastIndex(p, "/")+1:])
	}
	return out
}

func printArray(a *zarr.Array, indent string, depth int) {
	fmt.Printf("%sArray %q:\n", indent, a.Path())
	fmt.Printf("%s  Shape:      %v\n", indent, a.Shape())
	fmt.Printf("%s  ChunkShape: %v\n", indent, a.ChunkShape())
	fmt.Printf("%s  DType:      %s\n", indent, a.DType().Name)
	fmt.Printf("%s  FillValue:  %v\n", indent, a.FillValue())
	fmt.Printf("%s  Attrs:      %v\n", indent, a.Attrs())

	start := make([]int, a.Rank())
	stop := a.Shape()
	for i := range stop {
		start[i] = 1
		if stop[i] < start[i] {
			fmt.Printf("%s  [EMPTY DIMENSION]\n", indent)
			return
		}
	}
	if _, _, err := a.ReadGo(context.Background(), start, stop); err != nil {
		fmt.Printf("%s  ERROR reading: %v\n", indent, err)
	}
}
