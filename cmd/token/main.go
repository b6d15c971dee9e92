// Command token signs an HS256 bearer token for an account id. Development
// helper for exercising the authenticated endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crowdfund/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	account := flag.String("account", "", "account id to embed as subject")
	secret := flag.String("secret", os.Getenv("AUTH_SECRET"), "signing secret (defaults to AUTH_SECRET)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *account == "" {
		fmt.Fprintln(os.Stderr, "token: -account is required")
		os.Exit(1)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "token: -secret or AUTH_SECRET is required")
		os.Exit(1)
	}

	token, err := middleware.SignToken(*secret, middleware.TokenClaims{
		Sub:    *account,
		Exp:    time.Now().Add(*ttl).Unix(),
		Issuer: "crowdfund",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
