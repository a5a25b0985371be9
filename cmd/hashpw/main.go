// Command hashpw prints a password hash suitable for seeding the users table.
//
//	hashpw -algo bcrypt -cost 12 'operator-password'
//	echo -n 'operator-password' | hashpw -algo argon2id
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"vending-machine-api/config"
	"vending-machine-api/internal/service"
)

func main() {
	algo := flag.String("algo", config.HashBcrypt, "hash algorithm: bcrypt or argon2id")
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	password := flag.Arg(0)
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpw [-algo bcrypt|argon2id] [-cost n] <password>")
			os.Exit(2)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hashSvc, err := service.NewHashService(*algo, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}

	hash, err := hashSvc.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
