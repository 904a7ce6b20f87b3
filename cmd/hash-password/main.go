// Command hash-password generates a bcrypt hash for a password supplied
// as the single command-line argument. Useful for seeding user accounts.
package main

import (
	"fmt"
	"os"

	"github.com/editorialhq/editorial-api/internal/service/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hash-password <password>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
