package checksum_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingo-build/lingo/pkg/checksum"
)

func ExampleDir() {
	a, _ := os.MkdirTemp("", "a")
	b, _ := os.MkdirTemp("", "b")
	defer os.RemoveAll(a)
	defer os.RemoveAll(b)

	// Same content written in a different order.
	_ = os.WriteFile(filepath.Join(a, "one.lf"), []byte("target C;"), 0o644)
	_ = os.WriteFile(filepath.Join(a, "two.lf"), []byte("target Cpp;"), 0o644)
	_ = os.WriteFile(filepath.Join(b, "two.lf"), []byte("target Cpp;"), 0o644)
	_ = os.WriteFile(filepath.Join(b, "one.lf"), []byte("target C;"), 0o644)

	sumA, _ := checksum.Dir(context.Background(), a, checksum.Options{})
	sumB, _ := checksum.Dir(context.Background(), b, checksum.Options{Workers: 1})

	fmt.Println("equal:", sumA == sumB)
	fmt.Println("length:", len(sumA.String()))
	// Output:
	// equal: true
	// length: 40
}
