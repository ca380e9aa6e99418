// Command hashpw prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpw -cost 12 'correct horse'
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/iliyamo/exam-seat-allocation/internal/utils"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hashpw [-cost N] <password>")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}
