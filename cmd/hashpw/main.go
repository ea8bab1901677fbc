// Command hashpw prints a bcrypt hash for the password field of auth.yaml.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"nobounce_admin/internal/adapters/observability"
	"nobounce_admin/internal/auth"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	log.Logger = observability.NewLogger("dev", "warn")

	pw := strings.Join(flag.Args(), " ")
	if pw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("read password from stdin")
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		log.Fatal().Msg("usage: hashpw [-cost N] <password>  (or pipe it on stdin)")
	}

	hash, err := auth.HashPassword(pw, *cost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash failed")
	}
	fmt.Println(hash)
}
