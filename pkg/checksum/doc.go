// Package checksum computes order-independent content digests of directory
// trees.
//
// Every entry below the root (files, symlinks and directories) contributes a
// SHA-1 digest over a kind byte, its slash-separated relative path and, for
// files and symlinks, its content or link target. Entry digests are combined
// with XOR, so the result does not depend on the order in which siblings are
// visited and entries can be hashed concurrently:
//
//	sum, err := checksum.Dir(ctx, "build/libraries/tmp", checksum.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sum) // 40 lowercase hex characters
//
// Equal content at equal relative paths always yields an equal [Sum]; changing
// any byte, any path, or adding or removing an entry changes it.
package checksum
