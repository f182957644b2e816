package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"feriaocr/pkg/apitoken"
	"feriaocr/pkg/config"
)

// Mints a bearer token for an API client using server.jwt_secret.
func main() {
	cfgPath := flag.String("config", "", "config file")
	client := flag.String("client", "", "client name (token subject)")
	role := flag.String("role", "client", "role claim")
	ttl := flag.Duration("ttl", 90*24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	if *client == "" {
		fmt.Fprintln(os.Stderr, "usage: cmd_token -client <name> [-ttl 720h]")
		os.Exit(2)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Server.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "server.jwt_secret not set; export FERIA_SERVER_JWT_SECRET and retry")
		os.Exit(2)
	}
	tok, err := apitoken.Issue([]byte(cfg.Server.JWTSecret), *client, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
